// Package provider resolves which upstream backend a request targets: the
// request URL template and the display model name echoed back to clients.
// It also defines the AuthStrategy values the token source is built for.
package provider

import (
	"fmt"
	"strings"
)

// AuthStrategy selects how the proxy authenticates to the upstream.
type AuthStrategy string

const (
	AuthStrategyGCPServiceAccount AuthStrategy = "gcp_service_account"
	AuthStrategyStaticBearer     AuthStrategy = "static_bearer"
)

// LlmProviderBackend is the resolved-backend contract ChatHandler and
// ModelsHandler depend on: the upstream request URL for a given streaming
// intent, and the model name echoed back to OpenAI clients. VertexProvider
// is the only implementation the default config resolution wires up;
// OpenAiCompatibleProvider is carried as a second implementation so the
// dependency stays an interface in practice, not just in name.
type LlmProviderBackend interface {
	RequestURL(streaming bool) string
	DisplayModel() string
}

// VertexConfig describes a Vertex AI backend. Either FullURL is set (an
// explicit override) or the {Region, Project, Location, Publisher, ModelID}
// fields are composed into a resource URL; FullURL always wins when both are
// present.
type VertexConfig struct {
	FullURL string

	Region    string
	Project   string
	Location  string
	Publisher string
	ModelID   string

	// DisplayModel overrides the model name echoed back to OpenAI clients.
	// When empty, it is derived from ModelID with any "@revision" suffix
	// stripped; when ModelID is empty too, from the last path segment of
	// FullURL with any "@revision" suffix stripped.
	DisplayModel string
}

// VertexProvider resolves the pieces ChatHandler and Dispatcher need: the
// base resource URL (suffix not yet appended) and the display model name.
type VertexProvider struct {
	baseURL      string
	displayModel string
}

var _ LlmProviderBackend = (*VertexProvider)(nil)

// NewVertexProvider builds a VertexProvider for a Vertex AI backend.
func NewVertexProvider(cfg VertexConfig) (*VertexProvider, error) {
	baseURL := cfg.FullURL
	if baseURL == "" {
		if cfg.Region == "" || cfg.Project == "" || cfg.Publisher == "" || cfg.ModelID == "" {
			return nil, fmt.Errorf("vertex provider: need either FullURL or Region/Project/Publisher/ModelID")
		}
		location := cfg.Location
		if location == "" {
			location = cfg.Region
		}
		baseURL = fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/%s/models/%s",
			cfg.Region, cfg.Project, location, cfg.Publisher, cfg.ModelID,
		)
	}

	display := cfg.DisplayModel
	if display == "" {
		display = stripRevisionSuffix(cfg.ModelID)
	}
	if display == "" {
		display = stripRevisionSuffix(lastPathSegment(baseURL))
	}

	return &VertexProvider{baseURL: baseURL, displayModel: display}, nil
}

// DisplayModel is the model name echoed back to OpenAI clients.
func (p *VertexProvider) DisplayModel() string { return p.displayModel }

// RawPredictURL is the non-streaming request URL.
func (p *VertexProvider) RawPredictURL() string { return p.baseURL + ":rawPredict" }

// StreamRawPredictURL is the streaming request URL.
func (p *VertexProvider) StreamRawPredictURL() string { return p.baseURL + ":streamRawPredict" }

// RequestURL picks the right suffix for the given streaming intent.
func (p *VertexProvider) RequestURL(streaming bool) string {
	if streaming {
		return p.StreamRawPredictURL()
	}
	return p.RawPredictURL()
}

func stripRevisionSuffix(modelID string) string {
	if i := strings.Index(modelID, "@"); i >= 0 {
		return modelID[:i]
	}
	return modelID
}

func lastPathSegment(url string) string {
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// OpenAiCompatibleProvider targets a backend that already speaks the OpenAI
// wire format natively, so no :rawPredict/:streamRawPredict suffixing
// applies and BaseURL is returned as-is regardless of streaming intent. Not
// wired into the default ProviderConfig resolution (Vertex is the only
// backend that ships); present as a second LlmProviderBackend so ChatHandler
// and ModelsHandler genuinely depend on the interface rather than a
// single-implementation stand-in for it.
type OpenAiCompatibleProvider struct {
	BaseURL string
	Model   string
}

var _ LlmProviderBackend = (*OpenAiCompatibleProvider)(nil)

func (p *OpenAiCompatibleProvider) DisplayModel() string { return p.Model }

func (p *OpenAiCompatibleProvider) RequestURL(streaming bool) string { return p.BaseURL }
