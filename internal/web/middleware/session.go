package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
)

// SessionCookie names the cookie that identifies a UI session.
const SessionCookie = "inventory_session"

// Session assigns every browser a session ID, kept in a cookie, and stores
// it on the request context. open is called with the ID on every request.
func Session(open func(id string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}
			if open != nil {
				open(id)
			}

			ctx := core.ContextWithSession(r.Context(), id)
			ctx = logging.ContextWith(ctx, "session", id[:8])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
