package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/pkg/config"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

// Session resolves the anonymous cart session. A missing or malformed cookie
// mints a fresh session id; the cookie rides along on every response so the
// cart survives browser restarts up to the snapshot TTL.
func Session(cfg config.CartConfig, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(cfg.SessionCookie); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil && id != uuid.Nil {
					sessionID = id.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cfg.SessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(cfg.SessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
