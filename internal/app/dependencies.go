package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/calsync/internal/config"
	"github.com/klokku/calsync/internal/database"
	"github.com/klokku/calsync/internal/event_bus"
	"github.com/klokku/calsync/internal/utils"
	"github.com/klokku/calsync/pkg/event"
	"github.com/klokku/calsync/pkg/google"
	"github.com/klokku/calsync/pkg/ics"
	"github.com/klokku/calsync/pkg/notify"
	"github.com/klokku/calsync/pkg/reconciliation"
	"github.com/klokku/calsync/pkg/release_sync"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Config config.Application
	Clock  utils.Clock
	Bus    *event_bus.EventBus
	DB     *pgxpool.Pool

	Loader *event.Loader

	GoogleTokens  google.TokenRepository
	GoogleAuth    *google.GoogleAuth
	GoogleService *google.ServiceImpl
	GoogleHandler *google.Handler

	Reconciler       *reconciliation.Reconciler
	ReconcileHandler *reconciliation.Handler

	IcsHandler *ics.Handler

	Releases *release_sync.Syncer

	natsConn *nats.Conn
}

// BuildDependencies initializes and wires all application services and handlers.
// The database is opened and migrated only for the OAuth token flow; NATS is
// connected only when a URL is configured.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Clock:  &utils.SystemClock{},
		Bus:    event_bus.NewEventBus(),
	}

	deps.Loader = event.NewLoader(cfg.Events.ReleasesDir, cfg.Events.CallsDir)

	if cfg.DatabaseEnabled() {
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		deps.DB = db
		deps.GoogleTokens = google.NewTokenRepository(db)
		deps.GoogleAuth = google.NewGoogleAuth(deps.GoogleTokens, cfg)
		deps.GoogleService = google.NewService(deps.GoogleAuth)
	} else {
		log.Infof("Using Google credentials file %s", cfg.Google.CredentialsFile)
		deps.GoogleService = google.NewServiceWithOptions(option.WithCredentialsFile(cfg.Google.CredentialsFile))
	}
	deps.GoogleHandler = google.NewHandler(deps.GoogleService, deps.GoogleAuth)

	deps.Reconciler = reconciliation.NewReconciler(
		deps.GoogleService,
		deps.Loader,
		reconciliation.NewEventComparator(),
		reconciliation.Settings{
			ReleasesCalendarId: cfg.Calendars.Releases.Id,
			CallsCalendarId:    cfg.Calendars.Calls.Id,
			MonthsBefore:       cfg.Reconciliation.MonthsBefore,
			MonthsAfter:        cfg.Reconciliation.MonthsAfter,
			PageSize:           cfg.Reconciliation.PageSize,
		},
		deps.Clock,
		deps.Bus,
	)
	deps.ReconcileHandler = reconciliation.NewHandler(deps.Reconciler)

	deps.IcsHandler = ics.NewHandler(deps.Loader, deps.Reconciler.DefaultWindow, deps.Clock)

	deps.Releases = release_sync.NewSyncer(
		release_sync.NewMavenRepository(release_sync.DefaultRepositoryUrl),
		cfg.Events.ReleasesDir,
		release_sync.DefaultMinVersion,
	)

	if cfg.Nats.Url != "" {
		conn, err := notify.Connect(cfg.Nats)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("unable to set up notifications: %w", err)
		}
		deps.natsConn = conn
		notify.NewNotifier(conn, cfg.Nats.Subject).Subscribe(deps.Bus)
	}

	return deps, nil
}

// Close releases the database pool and the NATS connection.
func (d *Dependencies) Close() {
	if d.natsConn != nil {
		if err := d.natsConn.Drain(); err != nil {
			log.Warnf("unable to drain NATS connection: %v", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
