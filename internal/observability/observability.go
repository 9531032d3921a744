// Package observability wires the process-wide slog.Logger and bridges it
// into an OpenTelemetry LoggerProvider, so the same structured log records
// written via log/slog are also exported to an OTLP collector when one is
// configured.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Instrument installs the process-wide slog default logger at the given
// level and format, bridged through an OTel LoggerProvider. When
// OTEL_EXPORTER_OTLP_ENDPOINT is set, records are exported over OTLP
// (gRPC unless OTEL_EXPORTER_OTLP_PROTOCOL=http/protobuf); otherwise they
// are written to stdout. A minsev filter drops below-threshold records
// before they reach the exporter.
func Instrument(level slog.Level, format string) error {
	exporter, err := newExporter(context.Background())
	if err != nil {
		return fmt.Errorf("observability: creating log exporter: %w", err)
	}

	severityVar := &minsev.SeverityVar{}
	severityVar.SetSeverity(minsev.Severity(toOTelSeverity(level)))

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(
			minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severityVar),
		),
	)

	otelHandler := otelslog.NewHandler("modelmux", otelslog.WithLoggerProvider(provider))

	var handler slog.Handler
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch format {
	case string(LogFormatJSON):
		handler = fanoutHandler{primary: slog.NewJSONHandler(os.Stdout, handlerOpts), secondary: otelHandler}
	default:
		handler = fanoutHandler{primary: slog.NewTextHandler(os.Stdout, handlerOpts), secondary: otelHandler}
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// LogFormatJSON mirrors app.LogFormatJSON without importing the app package
// (observability is wired before the app layer and must not depend on it).
const LogFormatJSON = "json"

func newExporter(ctx context.Context) (sdklog.Exporter, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return stdoutlog.New()
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "http/protobuf" {
		return otlploghttp.New(ctx)
	}
	return otlploggrpc.New(ctx)
}

func toOTelSeverity(level slog.Level) otellog.Severity {
	switch {
	case level <= slog.LevelDebug:
		return otellog.SeverityDebug
	case level <= slog.LevelInfo:
		return otellog.SeverityInfo
	case level <= slog.LevelWarn:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityError
	}
}

// fanoutHandler writes every record to the primary slog handler (stdout)
// and additionally forwards it to the OTel bridge handler, so the two
// sinks never have to agree on level filtering independently.
type fanoutHandler struct {
	primary   slog.Handler
	secondary slog.Handler
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.secondary.Enabled(ctx, level)
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var err error
	if h.primary.Enabled(ctx, record.Level) {
		err = h.primary.Handle(ctx, record.Clone())
	}
	if h.secondary.Enabled(ctx, record.Level) {
		if secErr := h.secondary.Handle(ctx, record.Clone()); secErr != nil && err == nil {
			err = secErr
		}
	}
	return err
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanoutHandler{primary: h.primary.WithAttrs(attrs), secondary: h.secondary.WithAttrs(attrs)}
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	return fanoutHandler{primary: h.primary.WithGroup(name), secondary: h.secondary.WithGroup(name)}
}
