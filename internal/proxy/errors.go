package proxy

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yarenty/modelmux/internal/dispatcher"
)

// writeError maps any error raised by the request pipeline to the HTTP
// status and error type the OpenAI-compatible surface promises, per §7's
// kind-to-status table. Errors that aren't a *dispatcher.ProxyError map to
// 500 internal_error.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, errType := classify(err)
	writeJSONError(ctx, w, err.Error(), errType, status)
}

func classify(err error) (status int, errType string) {
	var proxyErr *dispatcher.ProxyError
	if !errors.As(err, &proxyErr) {
		return http.StatusInternalServerError, "internal_error"
	}

	switch proxyErr.Kind {
	case dispatcher.KindConfig, dispatcher.KindConversion:
		return http.StatusBadRequest, "invalid_request_error"
	case dispatcher.KindAuth:
		return http.StatusUnauthorized, "authentication_error"
	case dispatcher.KindHTTP:
		lower := strings.ToLower(proxyErr.Message)
		switch {
		case strings.Contains(lower, "rate") || strings.Contains(lower, "quota") || strings.Contains(lower, "too many requests"):
			return http.StatusTooManyRequests, "rate_limit_error"
		case strings.Contains(lower, "temporarily unavailable") || strings.Contains(lower, "unavailable"):
			return http.StatusServiceUnavailable, "service_unavailable"
		default:
			return http.StatusInternalServerError, "internal_error"
		}
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
