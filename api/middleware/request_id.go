package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"

	// Inbound ids come from the storefront's CDN or proxy. Anything blank
	// or oversized is replaced with a minted uuid.
	maxRequestIDLen = 64
)

// RequestID propagates the caller's request id, or mints one, echoes it on
// the response, and threads it through the context logger so every log line
// for the request carries it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
