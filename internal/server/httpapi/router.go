package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the router. Static routes win over the catch-all redirect.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Get("/activate/{token}", s.handleActivate)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)
	})

	r.Route("/url", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/shorten", s.handleShorten)
		r.Get("/", s.handleListUrls)
		r.Get("/stats/daily", s.handleDailyStats)
		r.Get("/stats/monthly", s.handleMonthlyStats)
	})

	r.Get("/{shortCode}", s.handleRedirect)

	return r
}
