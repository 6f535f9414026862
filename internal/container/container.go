package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seodash/adapters/excel"
	"seodash/adapters/postgres"
	"seodash/adapters/searchconsole"
	"seodash/adapters/sqlite"
	"seodash/internal"
	"seodash/internal/config"
	"seodash/internal/errors"
	"seodash/internal/notify"
	"seodash/internal/store"
	"seodash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB     *sqlx.DB
	Mirror ports.RecordMirror

	// Application components
	Store         *store.Store
	Ingestor      *excel.Ingestor
	Notifications *notify.Feed
	SearchConsole *searchconsole.Client
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}, nil
}

// Init opens the configured mirror, builds the components and warm-starts the store
func (c *Container) Init(ctx context.Context) error {
	if err := c.initMirror(ctx); err != nil {
		return errors.Wrapf(err, "failed to initialize %s mirror", c.Config.Mirror.Driver)
	}

	c.Notifications = notify.NewFeed(c.Config.Notifications.History, c.Logger)

	excelConfig := excel.DefaultExcelConfig()
	excelConfig.MaxUploadBytes = c.Config.Upload.MaxBytes
	c.Ingestor = excel.NewIngestor(excelConfig, c.Notifications, c.Logger)

	c.SearchConsole = searchconsole.NewClient(c.Config.SearchConsole, c.Logger)

	c.Store = store.New(c.Mirror, c.Logger)
	c.Store.Init(ctx)

	c.Logger.Info("Container initialized (mirror=%s, search console configured=%t)", c.Config.Mirror.Driver, c.SearchConsole.Configured())
	return nil
}

// initMirror selects the durable mirror for MIRROR_DRIVER
func (c *Container) initMirror(ctx context.Context) error {
	var err error
	switch c.Config.Mirror.Driver {
	case config.MirrorSQLite:
		c.DB, err = sqlite.Open(ctx, c.Config.Mirror.SQLitePath)
		if err != nil {
			return errors.DatabaseError("failed to open "+c.Config.Mirror.SQLitePath, err)
		}
		c.Mirror = sqlite.NewRecordMirror(c.DB)
	case config.MirrorPostgres:
		c.DB, err = postgres.Connect(ctx, c.Config.Mirror.DatabaseURL)
		if err != nil {
			return errors.DatabaseError("failed to connect to database", err)
		}
		c.Mirror = postgres.NewRecordMirror(c.DB)
	case config.MirrorNone:
		c.Logger.Warn("No mirror configured, loaded data will not survive a restart")
	default:
		return errors.ConfigInvalid("unknown mirror driver " + c.Config.Mirror.Driver)
	}
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
