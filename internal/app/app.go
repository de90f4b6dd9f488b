package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/calsync/internal/config"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, dependencies, router, scheduler and server lifecycle.
type Application struct {
	deps      *Dependencies
	router    *mux.Router
	srv       *http.Server
	scheduler *cron.Cron
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(cfg config.Application) (*Application, error) {
	deps, err := BuildDependencies(cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	RegisterRoutes(r, deps)

	var scheduler *cron.Cron
	if cfg.Reconciliation.Schedule != "" {
		scheduler, err = NewScheduler(cfg.Reconciliation.Schedule, deps.Reconciler)
		if err != nil {
			deps.Close()
			return nil, err
		}
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 5 * time.Minute,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{deps: deps, router: r, srv: srv, scheduler: scheduler}, nil
}

// Run starts the scheduler and the HTTP server and blocks until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	defer a.deps.Close()

	if a.scheduler != nil {
		log.Infof("Scheduling reconciliation at %q", a.deps.Config.Reconciliation.Schedule)
		a.scheduler.Start()
		defer func() { <-a.scheduler.Stop().Done() }()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
