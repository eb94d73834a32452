package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Brooksey3011/military-tees-uk/api/responses"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

// Recoverer converts handler panics into the standard 500 error envelope
// instead of a dropped connection, logging the panic value and stack.
// http.ErrAbortHandler passes through untouched so aborted streams keep
// their net/http semantics.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic": fmt.Sprint(rec),
						"stack": string(debug.Stack()),
					})
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "request handler panicked"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
