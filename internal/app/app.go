package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/antimine/internal/analytics"
	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/database"
	"github.com/vancomm/antimine/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	log      *logrus.Logger
	router   *http.ServeMux
	db       *pgxpool.Pool
	cookies  *config.Cookies
	ws       *config.WebSocket
	prefs    *config.Preferences
	presets  *config.Presets
	registry *prometheus.Registry
	metrics  *analytics.Metrics
}

func New(log *logrus.Logger) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &App{
		log:      log,
		router:   http.NewServeMux(),
		registry: registry,
		metrics:  analytics.New(registry),
	}
}

func (a *App) setup(ctx context.Context) error {
	db, migrator, err := database.ConnectAndMigrate(ctx, database.Migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	if version, dirty, err := migrator.Version(); err == nil {
		a.log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("database migrated")
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	if a.cookies, err = config.NewCookies(jwt); err != nil {
		return err
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return err
	}
	if a.prefs, err = config.NewPreferences(); err != nil {
		return err
	}
	if a.presets, err = config.LoadPresets(a.prefs); err != nil {
		return err
	}

	a.loadRoutes()
	return nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.cookies),
		middleware.Cors(config.CorsOrigins()),
		middleware.Logging(a.log),
	)
}

// Start serves the API until ctx is done, then drains open requests.
func (a *App) Start(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		return err
	}
	defer a.db.Close()

	addr := config.Addr()
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
