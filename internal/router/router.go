package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"calmate-web/internal/config"
	"calmate-web/internal/handler"
	"calmate-web/internal/metrics"
	"calmate-web/internal/middleware"
)

func New(
	cfg *config.Config,
	guard *middleware.Guard,
	gatherer prometheus.Gatherer,
	authHandler *handler.AuthHandler,
	pageHandler *handler.PageHandler,
	foodHandler *handler.FoodHandler,
	socialHandler *handler.SocialHandler,
	settingsHandler *handler.SettingsHandler,
	dataHandler *handler.DataHandler,
	healthCheck func() error,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if healthCheck != nil {
			if err := healthCheck(); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	// Every navigable page goes through the guard, which resolves the
	// session before any routing decision is made.
	r.Group(func(pages chi.Router) {
		pages.Use(middleware.Timeout(cfg.RequestTimeout))
		pages.Use(guard.Handler)

		pages.Get("/", pageHandler.Landing)
		pages.Get("/login", authHandler.LoginPage)
		pages.Post("/login", authHandler.Login)
		pages.Get("/signup", authHandler.SignupPage)
		pages.Post("/signup", authHandler.Signup)
		pages.Post("/logout", authHandler.Logout)

		pages.Route("/dashboard", func(dash chi.Router) {
			dash.Get("/", pageHandler.Dashboard)
			dash.Get("/food", foodHandler.Page)
			dash.Post("/food/upload", foodHandler.Upload)
			dash.Get("/social", socialHandler.Page)
			dash.Post("/social/request", socialHandler.SendRequest)
			dash.Post("/social/accept", socialHandler.AcceptRequest)
			dash.Get("/leaderboard", pageHandler.Leaderboard)
			dash.Get("/settings", settingsHandler.Page)
			dash.Post("/settings/profile", settingsHandler.UpdateProfile)
			dash.Post("/settings/goal", settingsHandler.SetGoal)
		})
	})

	r.Route("/data", func(data chi.Router) {
		data.Use(middleware.Timeout(cfg.RequestTimeout))
		data.Use(middleware.CORS(cfg.CORSOrigins))
		data.Use(guard.Attach)

		data.Get("/calorie-status", dataHandler.CalorieStatus)
		data.Get("/streak", dataHandler.Streak)
		data.Get("/leaderboard", dataHandler.Leaderboard)
		data.Get("/feed", dataHandler.Feed)
	})

	return r
}
