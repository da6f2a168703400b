// Handlers for the downloaded-comics library: listing, inspecting, CBZ
// export and opening directories in the system file manager.

package api

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mhiraki/comi-go/internal/export"
	"github.com/mhiraki/comi-go/internal/library"
	"github.com/mhiraki/comi-go/internal/models"
	"github.com/mhiraki/comi-go/internal/sysopen"
)

func (s *Server) handleListComics(w http.ResponseWriter, r *http.Request) {
	comics, err := s.store.ListComics()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve comics")
		return
	}
	if comics == nil {
		comics = []*models.DownloadedComic{}
	}
	RespondWithJSON(w, http.StatusOK, comics)
}

// loadComicByID resolves an index row to the full metadata document stored
// in its download directory, with on-disk chapter state marked.
func (s *Server) loadComicByID(id int64) (*models.Comic, error) {
	row, err := s.store.GetComicByID(id)
	if err != nil {
		return nil, err
	}
	comic, err := library.LoadComicMetadata(filepath.Join(row.Dir, library.ComicMetadataFile))
	if err != nil {
		return nil, err
	}
	s.app.Library().MarkDownloaded(comic)
	return comic, nil
}

func (s *Server) handleGetComic(w http.ResponseWriter, r *http.Request) {
	comicID, err := strconv.ParseInt(chi.URLParam(r, "comicID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid comic ID")
		return
	}
	comic, err := s.loadComicByID(comicID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Comic not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, comic)
}

func (s *Server) handleExportComic(w http.ResponseWriter, r *http.Request) {
	comicID, err := strconv.ParseInt(chi.URLParam(r, "comicID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid comic ID")
		return
	}
	comic, err := s.loadComicByID(comicID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Comic not found")
		return
	}

	// Export runs in the background; progress is reported over the
	// websocket hub.
	go func() {
		if err := export.CBZ(s.app, comic); err != nil {
			log.Printf("Failed to export comic %s: %v", comic.Title, err)
		}
	}()

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Export started.",
	})
}

func (s *Server) handleDeleteComic(w http.ResponseWriter, r *http.Request) {
	comicID, err := strconv.ParseInt(chi.URLParam(r, "comicID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid comic ID")
		return
	}
	// Removes the index row only. Files on disk stay put and a rescan
	// after a fresh download brings the comic back.
	if err := s.store.DeleteComicByID(comicID); err != nil {
		RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleRescanLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Library().Rescan(); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to rescan library")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleOpenPath(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Only directories under the configured download or export roots may
	// be opened.
	snapshot := s.app.Settings().Snapshot()
	if !pathWithin(payload.Path, snapshot.DownloadDir) && !pathWithin(payload.Path, snapshot.ExportDir) {
		RespondWithError(w, http.StatusForbidden, "Path is outside the download and export directories")
		return
	}

	if err := sysopen.OpenDir(payload.Path); err != nil {
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func pathWithin(path, root string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
