package middleware

import (
	"context"
	"net/http"
	"net/url"

	"calmate-web/internal/routes"
	"calmate-web/internal/session"
)

// SessionResolver settles a session id into a resolved session. Satisfied by
// session.Manager.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) *session.Session
}

type contextKey string

const sessionContextKey contextKey = "session"

// Guard gates page navigation on session state. The session is fully
// resolved before any redirect decision, so a slow profile validation can
// never cause a premature redirect, and because every request re-resolves,
// a logout redirects the very next render of a protected page.
type Guard struct {
	resolver SessionResolver
	cookies  *session.CookieCodec
}

func NewGuard(resolver SessionResolver, cookies *session.CookieCodec) *Guard {
	return &Guard{resolver: resolver, cookies: cookies}
}

func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := g.cookies.Read(r)
		if err != nil {
			sessionID = ""
		}

		sess := g.resolver.Resolve(r.Context(), sessionID)

		switch routes.Classify(r.URL.Path) {
		case routes.Protected:
			if !sess.Authenticated() {
				if sessionID != "" {
					// The persisted token failed validation; drop the
					// cookie along with it.
					g.cookies.Clear(w)
				}
				target := routes.LoginPath + "?" + routes.ReturnTargetParam + "=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		case routes.Public:
			if sess.Authenticated() {
				http.Redirect(w, r, routes.DefaultAuthenticatedPath, http.StatusFound)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Attach resolves the session and puts it on the context without any
// redirect. JSON endpoints use it so an expired session yields a 401 body
// instead of a login redirect.
func (g *Guard) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := g.cookies.Read(r)
		if err != nil {
			sessionID = ""
		}

		sess := g.resolver.Resolve(r.Context(), sessionID)
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the resolved session placed by the Guard.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	return sess, ok
}
