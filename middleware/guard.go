package middleware

import (
	"context"
	"net/http"

	donorlink "github.com/vitalsync/donorlink"
	"github.com/vitalsync/donorlink/guard"
)

type sessionContextKey struct{}

// SessionFromContext returns the session attached by [Protect] for an
// authorized request.
func SessionFromContext(ctx context.Context) (donorlink.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(donorlink.Session)
	return sess, ok
}

// Protect wraps a handler so it only serves sessions whose role is in
// allowed. Unauthenticated and unauthorized requests are redirected the way
// the guard decides; requests arriving before the client finished
// initializing get a neutral loading response.
func Protect(client *donorlink.Client, allowed []donorlink.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}

			redirected := false
			nav := guard.NavigatorFunc(func(path string) {
				redirected = true
				http.Redirect(w, r, path, http.StatusFound)
			})

			g := guard.New(client, nav, guard.Options{
				AllowedRoles: allowed,
				CurrentPath:  r.URL.Path,
				Routes:       clientRoutes(client),
				Recorder:     client,
			})

			switch g.Evaluate(r.Context()) {
			case guard.StateAuthorized:
				sess, _ := client.CurrentSession()
				ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
				next.ServeHTTP(w, r.WithContext(ctx))
			case guard.StateLoading:
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("loading"))
			default:
				if !redirected {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
				}
			}
		})
	}
}

func clientRoutes(client *donorlink.Client) donorlink.GuardConfig {
	return client.GuardRoutes()
}
