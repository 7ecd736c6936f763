package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"solicitations/internal/config"
	"solicitations/internal/controller"
	"solicitations/internal/logger"
	"solicitations/internal/repository"
	"solicitations/internal/router"
	"solicitations/internal/service"

	"gorm.io/gorm"
)

type App struct {
	repo       *repository.Repository
	service    *service.Service
	controller *controller.Controller
	handler    http.Handler
	log        *slog.Logger
	syncLog    func() error
	stopSig    chan os.Signal
	cfg        *config.Config
	db         *gorm.DB

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

// WithDB skips opening a connection from the config.
func WithDB(db *gorm.DB) option {
	return func(app *App) {
		app.db = db
	}
}

func WithLogger(log *slog.Logger) option {
	return func(app *App) {
		app.log = log
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
		syncLog: func() error { return nil },
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		app.cfg, err = config.NewConfig()
		if err != nil {
			return nil, err
		}
	}

	if app.log == nil {
		app.log, app.syncLog, err = logger.New(app.cfg.LogLevel, app.cfg.LogFormat)
		if err != nil {
			return nil, err
		}
	}

	app.repo, err = repository.NewRepository(app.db, &app.cfg.PostgresConfig, app.log)
	if err != nil {
		return nil, err
	}

	app.service = service.NewService(app.repo)
	app.controller = controller.NewController(app.service, app.log)
	app.handler = router.NewRouter(app.controller, app.log)

	return app, nil
}

func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Info("received signal", slog.String("signal", sig.String()))
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      app.handler,
		ReadTimeout:  app.cfg.ReadTimeout,
		WriteTimeout: app.cfg.WriteTimeout,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Error("http server error", logger.Err(err))
			cancel()
		}
	}()

	app.log.Info("server started, listening for connections", slog.String("address", app.cfg.ServerAddress))
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout)
	defer tcancel()
	app.log.Info("shutting down http server")
	if err := server.Shutdown(timeout); err != nil {
		app.log.Error("http server shutdown error", logger.Err(err))
	}

	app.log.Info("closing repository")
	if err := app.repo.Close(); err != nil {
		app.log.Error("repository closing error", logger.Err(err))
	}

	app.log.Info("exiting app")
	app.syncLog()
	close(app.Done)
}
