package app

import (
	"testing"

	"github.com/yarenty/modelmux/internal/profiler"
	"github.com/yarenty/modelmux/internal/provider"
)

func TestNew_WiresStaticBearerAuthFromEnv(t *testing.T) {
	t.Setenv("MODELMUX_TEST_TOKEN", "sk-test-token")

	cfg := &Config{
		LogFormat: LogFormatText,
		Server:    ServerConfig{Host: "127.0.0.1", Port: 4000},
		Shutdown:  ShutdownConfig{Timeout: DefaultConfigShutdownTimeout},
		Provider:  ProviderConfig{FullURL: "https://example.com/v1/models/claude"},
		Auth: AuthConfig{
			Strategy: provider.AuthStrategyStaticBearer,
			Storage:  TokenStorageTypeEnv,
			EnvKey:   "MODELMUX_TEST_TOKEN",
		},
		Streaming: StreamingConfig{Mode: profiler.ModeAuto, BufferMinBytes: DefaultConfigBufferMinBytes},
		Retry:     RetryConfig{MaxAttempts: DefaultConfigRetryMaxAttempts},
	}

	application, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if application.proxy == nil {
		t.Fatalf("expected proxy server to be constructed")
	}
	if application.metrics.Snapshot().SuccessRate != 100 {
		t.Fatalf("expected a freshly constructed app to report 100%% success rate with no traffic")
	}
}

func TestNew_RejectsUnresolvableProvider(t *testing.T) {
	cfg := &Config{
		LogFormat: LogFormatText,
		Server:    ServerConfig{Host: "127.0.0.1", Port: 4000},
		Shutdown:  ShutdownConfig{Timeout: DefaultConfigShutdownTimeout},
		Auth: AuthConfig{
			Strategy: provider.AuthStrategyStaticBearer,
			Storage:  TokenStorageTypeEnv,
			EnvKey:   "MODELMUX_MISSING_TOKEN",
		},
		Streaming: StreamingConfig{Mode: profiler.ModeAuto, BufferMinBytes: DefaultConfigBufferMinBytes},
		Retry:     RetryConfig{MaxAttempts: DefaultConfigRetryMaxAttempts},
	}

	if _, err := New(cfg); err == nil {
		t.Fatalf("expected New to fail validation when provider fields are all empty")
	}
}
