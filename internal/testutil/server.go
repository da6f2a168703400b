// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mhiraki/comi-go/internal/api"
	"github.com/mhiraki/comi-go/internal/config"
	"github.com/mhiraki/comi-go/internal/core"
	"github.com/mhiraki/comi-go/internal/downloader/providers"
	"github.com/mhiraki/comi-go/internal/downloader/providers/mockamanga"
	"github.com/mhiraki/comi-go/internal/settings"
	"github.com/mhiraki/comi-go/internal/websocket"
)

// SetupTestApp assembles a core.App with an in-memory database, temp-dir
// settings and the mock provider registered.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	dataDir := t.TempDir()
	cfg := &config.Config{}
	cfg.Data.Dir = dataDir

	mgr, err := settings.Load(filepath.Join(dataDir, "settings.json"), settings.Defaults(dataDir))
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()
	app := core.NewApp(cfg, db, mgr, hub, "test")

	t.Cleanup(func() {
		providers.UnregisterAll()
	})

	// Register providers for the test environment
	providers.Register(mockamanga.New())
	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB()
}
