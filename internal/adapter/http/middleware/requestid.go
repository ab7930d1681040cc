package middleware

import (
	"net/http"

	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the context and echoes it back in the
// response headers. An inbound id is reused so traces hold across services.
func (h *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			id, err := uuid.New()
			if err == nil {
				requestID = id.String()
			}
		}

		ctx := types.WithRequestIDContext(r.Context(), requestID)
		ctx = wrap.WithRequestID(ctx, requestID)

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
