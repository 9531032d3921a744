// Package profiler selects, per request, which of the four client-adaptive
// response strategies the chat handler should use: Collapse, NonStream,
// Buffered, or Passthrough.
package profiler

import (
	"net/http"
	"strings"
)

// Strategy is the response-delivery strategy chosen for one request.
type Strategy string

const (
	StrategyPassthrough Strategy = "passthrough"
	StrategyBuffered    Strategy = "buffered"
	StrategyNonStream   Strategy = "non_stream"
	StrategyCollapse    Strategy = "collapse"
)

// Mode is the operator-configured streaming mode. Auto defers to header-based
// detection; the others pin every request to one strategy regardless of the
// Collapse check, which runs independently of Mode.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeNonStream   Mode = "non_stream"
	ModeStandard    Mode = "standard"
	ModeBuffered    Mode = "buffered"
	ModeAlways      Mode = "always" // synonym for Standard/Passthrough
)

// defaultCollapseHeaders are the organization/project header values that
// select the Collapse strategy, whatever the configured Mode. Matching is
// exact and case-insensitive.
var defaultCollapseHeaders = []string{"basebox", "gui"}

var cliUserAgents = []string{"curl", "wget", "httpie", "python-requests"}

// ClientProfiler inspects request headers to pick a Strategy. The collapse
// header set is configurable; operators replace defaultCollapseHeaders by
// passing WithCollapseHeaders to NewClientProfiler.
type ClientProfiler struct {
	mode            Mode
	collapseHeaders map[string]struct{}
	bufferMinBytes  int
}

// Option configures a ClientProfiler.
type Option func(*ClientProfiler)

// WithCollapseHeaders replaces the set of organization/project header values
// that select the Collapse strategy.
func WithCollapseHeaders(values []string) Option {
	return func(p *ClientProfiler) {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[strings.ToLower(v)] = struct{}{}
		}
		p.collapseHeaders = set
	}
}

// WithBufferMinBytes sets the minimum accumulated length a Buffered batch
// must reach before it is flushed. Default 50.
func WithBufferMinBytes(n int) Option {
	return func(p *ClientProfiler) { p.bufferMinBytes = n }
}

// NewClientProfiler builds a profiler for the given configured Mode.
func NewClientProfiler(mode Mode, opts ...Option) *ClientProfiler {
	p := &ClientProfiler{mode: mode, bufferMinBytes: 50}
	p.collapseHeaders = make(map[string]struct{}, len(defaultCollapseHeaders))
	for _, v := range defaultCollapseHeaders {
		p.collapseHeaders[v] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BufferMinBytes reports the configured Buffered flush threshold.
func (p *ClientProfiler) BufferMinBytes() int { return p.bufferMinBytes }

// Select returns the strategy for a request. Collapse is checked first and
// independently of Mode, per the design note that the org/project headers
// override everything else.
func (p *ClientProfiler) Select(h http.Header) Strategy {
	if p.matchesCollapseHeaders(h) {
		return StrategyCollapse
	}

	switch p.mode {
	case ModeNonStream:
		return StrategyNonStream
	case ModeBuffered:
		return StrategyBuffered
	case ModeStandard, ModeAlways:
		return StrategyPassthrough
	}

	return p.detect(h)
}

func (p *ClientProfiler) matchesCollapseHeaders(h http.Header) bool {
	for _, key := range []string{"OpenAI-Organization", "OpenAI-Project"} {
		if _, ok := p.collapseHeaders[strings.ToLower(h.Get(key))]; ok {
			return true
		}
	}
	return false
}

// detect implements the Auto-mode header heuristics.
func (p *ClientProfiler) detect(h http.Header) Strategy {
	accept := h.Get("Accept")
	if accept != "" && !acceptsEventStream(accept) && !acceptsAny(accept) {
		return StrategyNonStream
	}

	ua := strings.ToLower(h.Get("User-Agent"))
	for _, cli := range cliUserAgents {
		if strings.Contains(ua, cli) {
			return StrategyNonStream
		}
	}
	if isAPITestingTool(ua) {
		return StrategyNonStream
	}

	if isBrowserOrIDE(ua) {
		return StrategyBuffered
	}

	return StrategyPassthrough
}

func acceptsEventStream(accept string) bool {
	return strings.Contains(accept, "text/event-stream")
}

func acceptsAny(accept string) bool {
	return strings.Contains(accept, "*/*")
}

func isAPITestingTool(ua string) bool {
	for _, tool := range []string{"postman", "insomnia", "httpie"} {
		if strings.Contains(ua, tool) {
			return true
		}
	}
	return false
}

func isBrowserOrIDE(ua string) bool {
	browsers := []string{"mozilla", "chrome", "safari", "webkit"}
	ides := []string{"vscode", "jetbrains", "vscodium", "cursor"}
	for _, b := range browsers {
		if strings.Contains(ua, b) {
			return true
		}
	}
	for _, ide := range ides {
		if strings.Contains(ua, ide) {
			return true
		}
	}
	return false
}
