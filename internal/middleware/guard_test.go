package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calmate-web/internal/model"
	"calmate-web/internal/session"
)

// stubResolver maps session ids to fixed resolved sessions.
type stubResolver struct {
	sessions map[string]*session.Session
}

func (s *stubResolver) Resolve(_ context.Context, sessionID string) *session.Session {
	if sess, exists := s.sessions[sessionID]; exists {
		return sess
	}
	return &session.Session{Status: session.StatusAnonymous}
}

func newTestGuard(t *testing.T, sessions map[string]*session.Session) (*Guard, *session.CookieCodec) {
	t.Helper()
	cookies := session.NewCookieCodec("calmate_session", "guard-test-secret", time.Hour, false)
	return NewGuard(&stubResolver{sessions: sessions}, cookies), cookies
}

func issueCookie(t *testing.T, cookies *session.CookieCodec, r *http.Request, sessionID string) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, cookies.Issue(rec, sessionID))
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
}

func authedSession(id string) *session.Session {
	return &session.Session{
		ID:     id,
		Status: session.StatusAuthenticated,
		Token:  "tok",
		User:   &model.UserProfile{ID: "u1", Username: "ana"},
	}
}

func TestGuardProtectedRoutes(t *testing.T) {
	t.Parallel()

	t.Run("anonymous visitor is redirected to login with a return target", func(t *testing.T) {
		guard, _ := newTestGuard(t, nil)

		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		})
		rec := httptest.NewRecorder()
		guard.Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/social", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login?from=%2Fdashboard%2Fsocial", rec.Header().Get("Location"))
	})

	t.Run("stale cookie is cleared on redirect", func(t *testing.T) {
		guard, cookies := newTestGuard(t, nil)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		issueCookie(t, cookies, req, "expired-session")

		rec := httptest.NewRecorder()
		guard.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		cleared := false
		for _, c := range rec.Result().Cookies() {
			if c.Name == "calmate_session" && c.MaxAge < 0 {
				cleared = true
			}
		}
		require.True(t, cleared)
	})

	t.Run("authenticated visitor passes through with the session on context", func(t *testing.T) {
		guard, cookies := newTestGuard(t, map[string]*session.Session{
			"sess-1": authedSession("sess-1"),
		})

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		issueCookie(t, cookies, req, "sess-1")

		var got *session.Session
		rec := httptest.NewRecorder()
		guard.Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got, _ = SessionFromContext(r.Context())
		})).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, "ana", got.User.Username)
	})
}

func TestGuardPublicRoutes(t *testing.T) {
	t.Parallel()

	t.Run("authenticated visitor on a public page is sent to the dashboard", func(t *testing.T) {
		guard, cookies := newTestGuard(t, map[string]*session.Session{
			"sess-1": authedSession("sess-1"),
		})

		for _, path := range []string{"/", "/login", "/signup"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			issueCookie(t, cookies, req, "sess-1")

			rec := httptest.NewRecorder()
			guard.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatalf("handler must not run for %s", path)
			})).ServeHTTP(rec, req)

			require.Equal(t, http.StatusFound, rec.Code, path)
			require.Equal(t, "/dashboard", rec.Header().Get("Location"), path)
		}
	})

	t.Run("anonymous visitor reaches public pages", func(t *testing.T) {
		guard, _ := newTestGuard(t, nil)

		called := false
		rec := httptest.NewRecorder()
		guard.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		require.True(t, called)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGuardAttach(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t, nil)

	var got *session.Session
	rec := httptest.NewRecorder()
	guard.Attach(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/feed", nil))

	// No redirect: the endpoint decides how to answer an anonymous caller.
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, session.StatusAnonymous, got.Status)
}
