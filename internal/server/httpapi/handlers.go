package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	msgRegistered     = "Registration successful! Please check your email to activate your account."
	msgActivated      = "Account activated successfully"
	msgResetSent      = "Password reset link sent to your email"
	msgPasswordReset  = "Password reset successfully"
	msgUnknownEmail   = "User with this email does not exist"
	msgURLNotFound    = "URL not found"
	healthPingTimeout = 2 * time.Second
)

type loginResponse struct {
	Token string                `json:"token"`
	User  *models.PublicProfile `json:"user"`
}

type shortenResponse struct {
	ShortCode string `json:"shortCode"`
	ShortURL  string `json:"shortUrl"`
}

type listResponse struct {
	URLs []*models.Link `json:"urls"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "register", err)
		return
	}

	err := s.accounts.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.fail(w, r, "register", err)
		return
	}

	s.metrics.AccountEvents.WithLabelValues("registered").Inc()
	writeMessage(w, http.StatusCreated, msgRegistered)
}

func (s *HTTPServer) handleActivate(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Activate(r.Context(), chi.URLParam(r, "token")); err != nil {
		s.fail(w, r, "activate", err)
		return
	}

	s.metrics.AccountEvents.WithLabelValues("activated").Inc()
	writeMessage(w, http.StatusOK, msgActivated)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "login", err)
		return
	}

	token, profile, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, "login", err)
		return
	}

	s.metrics.AccountEvents.WithLabelValues("login").Inc()
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: profile})
}

func (s *HTTPServer) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "forgot password", err)
		return
	}

	if err := s.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		s.fail(w, r, "forgot password", err, msgUnknownEmail)
		return
	}

	writeMessage(w, http.StatusOK, msgResetSent)
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "reset password", err)
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.fail(w, r, "reset password", err)
		return
	}

	s.metrics.AccountEvents.WithLabelValues("password_reset").Inc()
	writeMessage(w, http.StatusOK, msgPasswordReset)
}

func (s *HTTPServer) handleShorten(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerID(r.Context())

	var req shortenRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "shorten", err)
		return
	}

	link, err := s.links.Shorten(r.Context(), ownerID, req.LongURL)
	if err != nil {
		s.fail(w, r, "shorten", err)
		return
	}

	s.metrics.LinksCreated.Inc()
	writeJSON(w, http.StatusCreated, shortenResponse{
		ShortCode: link.ShortCode,
		ShortURL:  s.links.ShortURL(link.ShortCode),
	})
}

func (s *HTTPServer) handleListUrls(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := OwnerID(r.Context())

	links, err := s.links.ListForOwner(r.Context(), ownerID)
	if err != nil {
		s.fail(w, r, "list urls", err)
		return
	}
	if links == nil {
		links = []*models.Link{}
	}

	writeJSON(w, http.StatusOK, listResponse{URLs: links})
}

func (s *HTTPServer) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	s.writeStats(w, r, "daily stats", "Day", s.links.DailyStats)
}

func (s *HTTPServer) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	s.writeStats(w, r, "monthly stats", "Month", s.links.MonthlyStats)
}

// writeStats renders buckets as {"<label> <n>": count}.
func (s *HTTPServer) writeStats(w http.ResponseWriter, r *http.Request, op, label string,
	stats func(context.Context, string) (map[int]int, error)) {
	ownerID, _ := OwnerID(r.Context())

	buckets, err := stats(r.Context(), ownerID)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}

	out := make(map[string]int, len(buckets))
	for k, v := range buckets {
		out[fmt.Sprintf("%s %d", label, k)] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	longURL, err := s.links.Resolve(r.Context(), chi.URLParam(r, "shortCode"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
		}
		s.fail(w, r, "redirect", err, msgURLNotFound)
		return
	}

	s.metrics.RedirectsTotal.WithLabelValues("found").Inc()
	http.Redirect(w, r, longURL, http.StatusFound)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := s.health.PingContext(ctx); err != nil {
		s.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
