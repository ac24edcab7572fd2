package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/metrics"
)

// Recovery answers a handler panic with a 500 and logs the stack.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				metrics.IncAborted("panic")
				log.Error("Handler panicked",
					"request_id", RequestIDFromContext(r.Context()),
					"organization_id", r.Header.Get(OrganizationHeader),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", p,
					"stack", string(debug.Stack()),
				)
				writeJSONError(w, http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
