package core

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/mhiraki/comi-go/internal/assets"
	"github.com/mhiraki/comi-go/internal/config"
	"github.com/mhiraki/comi-go/internal/db"
	"github.com/mhiraki/comi-go/internal/library"
	"github.com/mhiraki/comi-go/internal/settings"
	"github.com/mhiraki/comi-go/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	config   *config.Config
	db       *sql.DB
	settings *settings.Manager
	wsHub    *websocket.Hub
	library  *library.Index
	version  string
}

// New sets up and returns a new App instance. It handles loading the
// bootstrap configuration, initializing the database connection, running
// migrations and loading the settings document.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	settingsPath := filepath.Join(cfg.Data.Dir, "settings.json")
	mgr, err := settings.Load(settingsPath, settings.Defaults(cfg.Data.Dir))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	return &App{
		config:   cfg,
		db:       database,
		settings: mgr,
		wsHub:    hub,
		library:  library.NewIndex(mgr.Snapshot().DownloadDir),
		version:  version,
	}, nil
}

// NewApp assembles an App from already-initialized components. Tests use
// it to inject in-memory databases and temp-dir settings.
func NewApp(cfg *config.Config, database *sql.DB, mgr *settings.Manager, hub *websocket.Hub, version string) *App {
	return &App{
		config:   cfg,
		db:       database,
		settings: mgr,
		wsHub:    hub,
		library:  library.NewIndex(mgr.Snapshot().DownloadDir),
		version:  version,
	}
}

func (a *App) Config() *config.Config      { return a.config }
func (a *App) DB() *sql.DB                 { return a.db }
func (a *App) Settings() *settings.Manager { return a.settings }
func (a *App) WsHub() *websocket.Hub       { return a.wsHub }
func (a *App) Library() *library.Index     { return a.library }
func (a *App) Version() string             { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
