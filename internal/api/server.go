// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mhiraki/comi-go/internal/core"
	"github.com/mhiraki/comi-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB(),
		store: store.New(app.DB()),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleGetVersion)

		// Settings Routes
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		// Directory Template Routes
		r.Post("/templates/validate", s.handleValidateTemplate)
		r.Post("/templates/preview", s.handlePreviewTemplate)

		// Provider Routes
		r.Get("/providers", s.handleListProviders)
		r.Get("/providers/{providerID}/search", s.handleProviderSearch)
		r.Get("/providers/{providerID}/comics/{pathWord}", s.handleProviderGetComic)
		r.Get("/providers/{providerID}/favorites", s.handleProviderFavorites)

		// Downloader Routes
		r.Post("/downloads/queue", s.handleAddChaptersToQueue)
		r.Get("/downloads/queue", s.handleGetDownloadQueue)
		r.Post("/downloads/action", s.handleQueueAction)
		r.Post("/downloads/queue/{itemID}/action", s.handleQueueItemAction)

		// Library Routes
		r.Get("/comics", s.handleListComics)
		r.Get("/comics/{comicID}", s.handleGetComic)
		r.Post("/comics/{comicID}/export", s.handleExportComic)
		r.Delete("/comics/{comicID}", s.handleDeleteComic)
		r.Post("/comics/rescan", s.handleRescanLibrary)

		r.Post("/open-path", s.handleOpenPath)
	})

	// WebSocket route
	r.Get("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}
