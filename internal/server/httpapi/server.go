// Package httpapi is the public HTTP boundary: account endpoints, link
// management for authenticated owners, and the anonymous redirect.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/go-playground/validator/v10"
)

const shutdownTimeout = 10 * time.Second

// Accounts is the account lifecycle as seen by the boundary.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) error
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (string, *models.PublicProfile, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Authenticate(ctx context.Context, token string) (string, error)
}

// Links is link management, redirect and stats as seen by the boundary.
type Links interface {
	Shorten(ctx context.Context, ownerID, longURL string) (*models.Link, error)
	ShortURL(code string) string
	Resolve(ctx context.Context, code string) (string, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.Link, error)
	DailyStats(ctx context.Context, ownerID string) (map[int]int, error)
	MonthlyStats(ctx context.Context, ownerID string) (map[int]int, error)
}

// Pinger reports store reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	address  string
	accounts Accounts
	links    Links
	health   Pinger
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, accounts Accounts, links Links, health Pinger, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		address:  address,
		accounts: accounts,
		links:    links,
		health:   health,
		metrics:  m,
		validate: newValidator(),
		logger:   l.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
