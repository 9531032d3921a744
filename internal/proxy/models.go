package proxy

import (
	"net/http"

	"github.com/yarenty/modelmux/internal/provider"
	"github.com/yarenty/modelmux/internal/wire"
)

// ModelsHandler serves GET /v1/models with the single model the proxy
// exposes to clients. Vertex doesn't provide a model-listing endpoint in
// the shape OpenAI clients expect, so the answer is synthesized. The
// entry's created field is now() in milliseconds.
type ModelsHandler struct {
	Provider provider.LlmProviderBackend
	now      func() int64
}

func NewModelsHandler(p provider.LlmProviderBackend, now func() int64) *ModelsHandler {
	return &ModelsHandler{Provider: p, now: now}
}

func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, wire.ModelList{
		Object: "list",
		Data: []wire.Model{
			{
				ID:      h.Provider.DisplayModel(),
				Object:  "model",
				Created: h.now() * 1000,
				OwnedBy: "anthropic",
			},
		},
	}, http.StatusOK)
}
