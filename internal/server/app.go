// Package server wires the application together: database and migrations,
// services, the notifier, and the HTTP and gRPC servers, with graceful
// shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/codegen"
	"github.com/dmitrijs2005/linkkeeper/internal/server/config"
	"github.com/dmitrijs2005/linkkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/linkkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/linkkeeper/internal/server/notify"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/linkkeeper/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	metrics  *metrics.Metrics
	accounts *services.AccountService
	links    *services.LinkService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	notifier, err := newNotifier(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	gen, err := codegen.NewGenerator(codegen.Base62, c.CodeLength)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("code generator init error: %w", err)
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey))

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		metrics:  metrics.New(),
		accounts: services.NewAccountService(db, rm, tokens, notifier, c, logger),
		links:    services.NewLinkService(db, rm, gen, c, logger),
	}, nil
}

// newNotifier picks the delivery mechanism named by c.Notifier.
func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Notifier, error) {
	switch c.Notifier {
	case "smtp":
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			User:     c.SMTPUser,
			Password: c.SMTPPassword,
			From:     c.SMTPFrom,
			Secure:   c.SMTPSecure,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	case "s3":
		n, err := notify.NewS3Notifier(ctx, notify.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
			From:         c.SMTPFrom,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	case "log", "":
		return notify.NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", c.Notifier)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.accounts, app.links, app.db, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives, or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
