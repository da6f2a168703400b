package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhiraki/comi-go/internal/api"
	"github.com/mhiraki/comi-go/internal/core"
	"github.com/mhiraki/comi-go/internal/downloader"
	"github.com/mhiraki/comi-go/internal/downloader/providers"
	"github.com/mhiraki/comi-go/internal/downloader/providers/copymanga"
	"github.com/mhiraki/comi-go/internal/downloader/providers/kaviar"
	"github.com/mhiraki/comi-go/internal/library"
	"github.com/mhiraki/comi-go/internal/updater"
)

var version = "dev"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New(version)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// Register all available downloader providers here. The copymanga
	// provider reads the API domain and token through the settings
	// manager so updates apply without a restart.
	providers.Register(copymanga.New(func() copymanga.Options {
		s := app.Settings().Snapshot()
		return copymanga.Options{Domain: s.APIDomain, Token: s.Token}
	}))
	providers.Register(kaviar.New())

	// Initial library scan on startup
	log.Println("Indexing downloaded comics...")
	if err := app.Library().Rescan(); err != nil {
		log.Printf("Warning: initial library scan failed: %v", err)
	}

	// Watch the download directory so external changes show up without
	// a manual rescan.
	watcher := library.NewWatcherService(app.Library())
	if err := watcher.Start(); err != nil {
		log.Printf("Warning: could not start library watcher: %v", err)
	} else {
		defer watcher.Stop()
	}

	// Re-anchor the index and watcher when the download directory moves.
	go followDownloadDir(app, watcher)

	// Start the download worker pool
	downloader.StartWorkerPool(app)

	// Start the periodic update checker for downloaded comics
	updateService := updater.NewService(app)
	updateService.Start()
	defer updateService.Stop()

	// Setup the API server
	server := api.NewServer(app)
	addr := fmt.Sprintf(":%d", app.Config().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully.")
}

// followDownloadDir re-roots the library index and file watcher whenever
// the downloadDir setting changes.
func followDownloadDir(app *core.App, watcher *library.WatcherService) {
	updates, cancel := app.Settings().Subscribe()
	defer cancel()

	current := app.Settings().Snapshot().DownloadDir
	for s := range updates {
		if s.DownloadDir == current {
			continue
		}
		current = s.DownloadDir
		log.Printf("Download directory changed to %s, reindexing...", current)
		if err := app.Library().SetRoot(current); err != nil {
			log.Printf("Warning: failed to reindex library: %v", err)
		}
		watcher.Stop()
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: could not restart library watcher: %v", err)
		}
	}
}
