package profiler

import (
	"net/http"
	"testing"
)

func headers(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func TestClientProfiler_CollapseOverridesMode(t *testing.T) {
	p := NewClientProfiler(ModeStandard)
	got := p.Select(headers("OpenAI-Organization", "BaseBox"))
	if got != StrategyCollapse {
		t.Fatalf("expected Collapse, got %s", got)
	}
}

func TestClientProfiler_ConfiguredModeOverridesAutoDetection(t *testing.T) {
	p := NewClientProfiler(ModeNonStream)
	got := p.Select(headers("Accept", "text/event-stream", "User-Agent", "Mozilla/5.0"))
	if got != StrategyNonStream {
		t.Fatalf("expected NonStream forced by mode, got %s", got)
	}
}

func TestClientProfiler_AutoDetectsCLITool(t *testing.T) {
	p := NewClientProfiler(ModeAuto)
	got := p.Select(headers("User-Agent", "curl/8.4.0"))
	if got != StrategyNonStream {
		t.Fatalf("expected NonStream for curl, got %s", got)
	}
}

func TestClientProfiler_AutoDetectsBrowser(t *testing.T) {
	p := NewClientProfiler(ModeAuto)
	got := p.Select(headers("User-Agent", "Mozilla/5.0 (Macintosh) AppleWebKit/537.36 Chrome/120.0"))
	if got != StrategyBuffered {
		t.Fatalf("expected Buffered for a browser UA, got %s", got)
	}
}

func TestClientProfiler_AutoDefaultsToPassthrough(t *testing.T) {
	p := NewClientProfiler(ModeAuto)
	got := p.Select(headers("User-Agent", "some-agent-framework/1.0"))
	if got != StrategyPassthrough {
		t.Fatalf("expected Passthrough default, got %s", got)
	}
}

func TestClientProfiler_RestrictiveAcceptForcesNonStream(t *testing.T) {
	p := NewClientProfiler(ModeAuto)
	got := p.Select(headers("Accept", "application/xml", "User-Agent", "some-agent-framework/1.0"))
	if got != StrategyNonStream {
		t.Fatalf("expected NonStream when Accept excludes event-stream and */*, got %s", got)
	}
}

func TestClientProfiler_CustomCollapseHeaders(t *testing.T) {
	p := NewClientProfiler(ModeAuto, WithCollapseHeaders([]string{"acme-corp"}))
	got := p.Select(headers("OpenAI-Organization", "ACME-Corp"))
	if got != StrategyCollapse {
		t.Fatalf("expected case-insensitive custom collapse match, got %s", got)
	}
}
