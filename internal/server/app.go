// Package server wires storage, services and transports into the Fe
// message server and runs it until a signal or a fatal error.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fe/internal/cryptox"
	"github.com/dmitrijs2005/fe/internal/dbx"
	"github.com/dmitrijs2005/fe/internal/logging"
	"github.com/dmitrijs2005/fe/internal/server/archive"
	"github.com/dmitrijs2005/fe/internal/server/auth"
	"github.com/dmitrijs2005/fe/internal/server/config"
	"github.com/dmitrijs2005/fe/internal/server/httpserver"
	"github.com/dmitrijs2005/fe/internal/server/notify"
	"github.com/dmitrijs2005/fe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fe/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/fe/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	notifier *notify.Publisher
	messages *services.MessageService
	http     *httpserver.Server
	grpc     *gs.GRPCServer
}

// NewApp opens the database, applies migrations and builds both servers.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, dialect dbx.Dialect) (*App, error) {
	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	sealer, err := cryptox.NewSealer([]byte(c.SecretKey))
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(c.NATSURL, c.NATSSubjectPrefix, logger)
	if err != nil {
		return nil, fmt.Errorf("nats: %w", err)
	}

	var archiver services.Archiver
	if c.S3ArchiveEnabled {
		a, err := archive.New(ctx, c, logger)
		if err != nil {
			_ = notifier.Close()
			return nil, fmt.Errorf("archive: %w", err)
		}
		archiver = a
	}

	var n services.Notifier
	if notifier.Enabled() {
		n = notifier
	}

	us := services.NewUserService(db, rm, sealer)
	ms := services.NewMessageService(db, rm, c, logger, n, archiver)
	az := auth.NewAuthorizer(us, auth.NewLimiter(c.RateLimit, c.RateBurst), logger)

	hs := httpserver.NewServer(c.EndpointAddrHTTP, logger, ms, us, az, httpserver.Options{
		MaxBodyBytes: c.MaxBodyBytes,
		AdminSecret:  []byte(c.SecretKey),
	})

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		notifier: notifier,
		messages: ms,
		http:     hs,
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case s := <-sigs:
			app.logger.Info(context.Background(), "Received signal", "signal", s.String())
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves HTTP and gRPC until ctx ends, a signal arrives or either
// server fails. Resources are released before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.http.Run(gctx) })
	g.Go(func() error { return app.grpc.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(context.Background(), "server stopped with error", "error", err)
	}

	app.logger.Info(context.Background(), "Stopped")
	return errors.Join(err, app.Close())
}

// Close waits for archive uploads, then releases the notifier and the
// database.
func (app *App) Close() error {
	app.messages.Wait()
	return errors.Join(app.notifier.Close(), app.db.Close())
}
