package proxy

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yarenty/modelmux/internal/dispatcher"
	"github.com/yarenty/modelmux/internal/metrics"
	"github.com/yarenty/modelmux/internal/profiler"
	"github.com/yarenty/modelmux/internal/provider"
	"github.com/yarenty/modelmux/internal/streaming"
	"github.com/yarenty/modelmux/internal/translate"
	"github.com/yarenty/modelmux/internal/wire"
)

// ChatHandler orchestrates one /v1/chat/completions request end to end:
// parse, profile, translate, dispatch, translate the response back, write.
type ChatHandler struct {
	Provider   provider.LlmProviderBackend
	Profiler   *profiler.ClientProfiler
	Dispatcher *dispatcher.Dispatcher
	Metrics    *metrics.Metrics

	requestTranslator  *translate.RequestTranslator
	responseTranslator *translate.ResponseTranslator

	// now is overridable in tests; defaults to a real Unix-clock reading
	// supplied by the caller at construction (see NewChatHandler).
	now func() int64
}

// NewChatHandler wires a ChatHandler from its dependencies. now supplies the
// Unix timestamp stamped into non-stream responses and stream chunks.
func NewChatHandler(p provider.LlmProviderBackend, cp *profiler.ClientProfiler, d *dispatcher.Dispatcher, m *metrics.Metrics, now func() int64) *ChatHandler {
	return &ChatHandler{
		Provider:           p,
		Profiler:           cp,
		Dispatcher:         d,
		Metrics:            m,
		requestTranslator:  translate.NewRequestTranslator(),
		responseTranslator: translate.NewResponseTranslator(),
		now:                now,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req wire.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(ctx, w, dispatcher.NewConversionError("malformed request body", err))
		return
	}

	strategy := h.Profiler.Select(r.Header)
	if strategy == profiler.StrategyCollapse || strategy == profiler.StrategyNonStream {
		noStream := false
		req.Stream = &noStream
	}

	anthropicReq, err := h.requestTranslator.Translate(req)
	if err != nil {
		h.fail(ctx, w, dispatcher.NewConversionError(err.Error(), err))
		return
	}

	url := h.Provider.RequestURL(anthropicReq.Stream)

	payload, err := json.Marshal(anthropicReq)
	if err != nil {
		h.fail(ctx, w, dispatcher.NewRequestError("serializing upstream payload", err))
		return
	}

	// Collapse and NonStream both call :rawPredict and need the complete
	// JSON body before they can produce anything; Passthrough and Buffered
	// call :streamRawPredict and must consume it incrementally, so only
	// those two take the live-body path.
	switch strategy {
	case profiler.StrategyCollapse:
		body, _, err := h.Dispatcher.Send(ctx, url, payload)
		if err != nil {
			h.fail(ctx, w, err)
			return
		}
		h.writeCollapsed(ctx, w, body)
	case profiler.StrategyNonStream:
		body, _, err := h.Dispatcher.Send(ctx, url, payload)
		if err != nil {
			h.fail(ctx, w, err)
			return
		}
		h.writeNonStream(ctx, w, body)
	case profiler.StrategyBuffered:
		body, err := h.Dispatcher.SendStream(ctx, url, payload)
		if err != nil {
			h.fail(ctx, w, err)
			return
		}
		defer body.Close()
		h.writeStreaming(ctx, w, body, true)
	default:
		body, err := h.Dispatcher.SendStream(ctx, url, payload)
		if err != nil {
			h.fail(ctx, w, err)
			return
		}
		defer body.Close()
		h.writeStreaming(ctx, w, body, false)
	}
}

func (h *ChatHandler) writeNonStream(ctx context.Context, w http.ResponseWriter, body []byte) {
	var anthropicResp wire.AnthropicResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		h.fail(ctx, w, dispatcher.NewRequestError("decoding upstream response", err))
		return
	}

	out, err := h.responseTranslator.Translate(anthropicResp, h.Provider.DisplayModel(), h.now())
	if err != nil {
		h.fail(ctx, w, dispatcher.NewConversionError(err.Error(), err))
		return
	}

	h.Metrics.RecordSuccess()
	writeJSON(ctx, w, out, http.StatusOK)
}

func (h *ChatHandler) writeCollapsed(ctx context.Context, w http.ResponseWriter, body []byte) {
	var anthropicResp wire.AnthropicResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		h.fail(ctx, w, dispatcher.NewRequestError("decoding upstream response", err))
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		h.fail(ctx, w, dispatcher.NewRequestError("client does not support streaming", err))
		return
	}

	chunks := streaming.Collapse(anthropicResp, "chatcmpl-"+uuid.NewString(), h.Provider.DisplayModel(), h.now())
	for _, chunk := range chunks {
		if writeErr := sse.WriteData(chunk); writeErr != nil {
			slog.ErrorContext(ctx, "writing collapsed SSE frame", "error", writeErr)
			return
		}
	}
	_ = sse.WriteRaw("[DONE]")
	h.Metrics.RecordSuccess()
}

func (h *ChatHandler) writeStreaming(ctx context.Context, w http.ResponseWriter, body io.Reader, buffered bool) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		h.fail(ctx, w, dispatcher.NewRequestError("client does not support streaming", err))
		return
	}

	frames := streaming.Run(ctx, body, "chatcmpl-"+uuid.NewString(), h.Provider.DisplayModel(), h.now())
	if buffered {
		frames = streaming.BufferRelay(frames, h.Profiler.BufferMinBytes())
	}

	for frame := range frames {
		if frame.Err != nil {
			slog.ErrorContext(ctx, "stream translation error", "error", frame.Err)
			break
		}
		if writeErr := sse.WriteData(frame.Chunk); writeErr != nil {
			slog.ErrorContext(ctx, "writing SSE frame", "error", writeErr)
			return
		}
	}
	_ = sse.WriteRaw("[DONE]")
	h.Metrics.RecordSuccess()
}

func (h *ChatHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	h.Metrics.RecordFailure()
	writeError(ctx, w, err)
}
