//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"calmate-web/internal/api"
	"calmate-web/internal/config"
	"calmate-web/internal/event"
	"calmate-web/internal/handler"
	"calmate-web/internal/metrics"
	"calmate-web/internal/middleware"
	"calmate-web/internal/model"
	"calmate-web/internal/resource"
	"calmate-web/internal/router"
	"calmate-web/internal/session"
	"calmate-web/internal/view"
)

// upstream is an in-memory stand-in for the CalMate API. It accepts one
// credential pair and issues a fixed bearer token.
type upstream struct {
	mu       sync.Mutex
	email    string
	password string
	token    string
	profile  model.UserProfile
	logs     []model.FoodLog
	goal     int
}

func newUpstream() *upstream {
	return &upstream{
		email:    "ana@example.com",
		password: "hunter22",
		token:    "upstream-token-1",
		profile: model.UserProfile{
			ID:       "user-1",
			Email:    "ana@example.com",
			Username: "ana",
		},
		goal: 2000,
	}
}

func (u *upstream) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)

		u.mu.Lock()
		ok := creds.Email == u.email && creds.Password == u.password
		token := u.token
		u.mu.Unlock()

		if !ok {
			writeUpstreamJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeUpstreamJSON(w, http.StatusOK, model.TokenResponse{AccessToken: token})
	})

	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password, Username string }
		_ = json.NewDecoder(r.Body).Decode(&body)

		u.mu.Lock()
		u.email = body.Email
		u.password = body.Password
		u.profile.Email = body.Email
		u.profile.Username = body.Username
		u.mu.Unlock()

		writeUpstreamJSON(w, http.StatusCreated, model.SignupResponse{ID: "user-1"})
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			u.mu.Lock()
			want := "Bearer " + u.token
			u.mu.Unlock()
			if r.Header.Get("Authorization") != want {
				writeUpstreamJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /users/profile", authed(func(w http.ResponseWriter, _ *http.Request) {
		u.mu.Lock()
		profile := u.profile
		u.mu.Unlock()
		writeUpstreamJSON(w, http.StatusOK, profile)
	}))
	mux.HandleFunc("GET /users/calorie-status", authed(func(w http.ResponseWriter, _ *http.Request) {
		u.mu.Lock()
		consumed := 0
		for _, l := range u.logs {
			consumed += l.Calories
		}
		status := model.CalorieStatus{Goal: u.goal, Consumed: consumed, Remaining: u.goal - consumed}
		u.mu.Unlock()
		writeUpstreamJSON(w, http.StatusOK, status)
	}))
	mux.HandleFunc("GET /food/logs", authed(func(w http.ResponseWriter, _ *http.Request) {
		u.mu.Lock()
		logs := append([]model.FoodLog(nil), u.logs...)
		u.mu.Unlock()
		writeUpstreamJSON(w, http.StatusOK, logs)
	}))
	mux.HandleFunc("POST /food/analyze", authed(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeUpstreamJSON(w, http.StatusBadRequest, map[string]string{"message": "bad upload"})
			return
		}
		entry := model.FoodLog{
			ID:        "log-new",
			UserID:    "user-1",
			FoodName:  "Avocado toast",
			Calories:  320,
			Timestamp: time.Now(),
		}
		u.mu.Lock()
		u.logs = append([]model.FoodLog{entry}, u.logs...)
		u.mu.Unlock()
		writeUpstreamJSON(w, http.StatusOK, entry)
	}))
	mux.HandleFunc("GET /streaks/current", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeUpstreamJSON(w, http.StatusOK, model.Streak{UserID: "user-1", CurrentStreak: 3, HighestStreak: 9})
	}))
	mux.HandleFunc("GET /streaks/leaderboard", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeUpstreamJSON(w, http.StatusOK, []model.LeaderboardEntry{
			{Username: "ana", TotalPoints: 120, HighestStreak: 9},
			{Username: "ben", TotalPoints: 80, HighestStreak: 4},
		})
	}))
	mux.HandleFunc("GET /social/users", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeUpstreamJSON(w, http.StatusOK, []model.UserSummary{
			{ID: "user-1", Username: "ana"},
			{ID: "user-2", Username: "ben"},
		})
	}))
	mux.HandleFunc("GET /social/friends", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeUpstreamJSON(w, http.StatusOK, []model.Friend{})
	}))
	mux.HandleFunc("GET /social/friends/requests", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeUpstreamJSON(w, http.StatusOK, []model.FriendRequest{})
	}))
	mux.HandleFunc("GET /social/feed", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeUpstreamJSON(w, http.StatusOK, []model.FeedItem{})
	}))

	return mux
}

func writeUpstreamJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// newWebServer wires the full stack against the given upstream and returns
// the front-end test server plus a cookie-carrying client.
func newWebServer(t *testing.T, up *upstream) (*httptest.Server, *http.Client) {
	t.Helper()

	upstreamServer := httptest.NewServer(up.handler())
	t.Cleanup(upstreamServer.Close)

	cfg := &config.Config{
		ServerPort:        "0",
		RequestTimeout:    10 * time.Second,
		APIBaseURL:        upstreamServer.URL,
		UpstreamTimeout:   5 * time.Second,
		SessionCookieName: "calmate_session",
		SessionSecret:     "integration-test-secret",
		SessionTTL:        time.Hour,
		MaxUploadSize:     10 << 20,
		MaxImageEdge:      1600,
		RateLimitRPM:      10000,
		AuthRateLimitRPM:  10000,
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	client := api.New(cfg.APIBaseURL, cfg.UpstreamTimeout, api.WithRecorder(collector))

	bus := event.NewBus()
	store := session.NewMemoryStore()
	manager := session.NewManager(client, store, bus, cfg.SessionTTL)
	cookies := session.NewCookieCodec(cfg.SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, false)
	resources := resource.NewRegistry(client, bus)
	t.Cleanup(resources.Shutdown)

	renderer, err := view.New()
	require.NoError(t, err)

	guard := middleware.NewGuard(manager, cookies)
	h := router.New(cfg, guard, registry,
		handler.NewAuthHandler(manager, cookies, renderer),
		handler.NewPageHandler(resources, renderer),
		handler.NewFoodHandler(resources, renderer, cfg.MaxUploadSize, cfg.MaxImageEdge),
		handler.NewSocialHandler(resources, renderer),
		handler.NewSettingsHandler(resources, renderer),
		handler.NewDataHandler(resources),
		nil,
	)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return nil
		},
	}
	return server, browser
}

// noFollow returns the client configured to stop at the first redirect so
// tests can assert on Location headers.
func noFollow(browser *http.Client) *http.Client {
	clone := *browser
	clone.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &clone
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func login(t *testing.T, server *httptest.Server, browser *http.Client, email, password string) {
	t.Helper()

	form := strings.NewReader("email=" + email + "&password=" + password)
	resp, err := browser.Post(server.URL+"/login", "application/x-www-form-urlencoded", form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
