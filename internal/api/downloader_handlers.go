// A handler file for all downloader-related API endpoints.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mhiraki/comi-go/internal/downloader"
	"github.com/mhiraki/comi-go/internal/downloader/providers"
	"github.com/mhiraki/comi-go/internal/models"
)

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	providerList := providers.GetAll()
	RespondWithJSON(w, http.StatusOK, providerList)
}

func (s *Server) handleProviderSearch(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerID")
	query := r.URL.Query().Get("q")

	provider, ok := providers.Get(providerID)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Provider not found")
		return
	}

	results, err := provider.Search(query)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to perform search")
		return
	}

	RespondWithJSON(w, http.StatusOK, results)
}

func (s *Server) handleProviderGetComic(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerID")
	pathWord := chi.URLParam(r, "pathWord")

	provider, ok := providers.Get(providerID)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Provider not found")
		return
	}

	comic, err := provider.GetComic(pathWord)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to get comic")
		return
	}
	// Flag the chapters that already exist on disk so the UI can grey
	// them out.
	s.app.Library().MarkDownloaded(comic)

	RespondWithJSON(w, http.StatusOK, comic)
}

func (s *Server) handleProviderFavorites(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerID")

	provider, ok := providers.Get(providerID)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Provider not found")
		return
	}
	fav, ok := provider.(models.FavoritesProvider)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Provider does not support favorites")
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			RespondWithError(w, http.StatusBadRequest, "Invalid page")
			return
		}
		page = n
	}

	result, err := fav.GetFavorites(page)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get favorites: %v", err))
		return
	}

	// Flag the comics that already exist on disk so the UI can show
	// which favorites were downloaded.
	for i := range result.Comics {
		if dirs := s.app.Library().DirsFor(result.Comics[i].PathWord); len(dirs) > 0 {
			result.Comics[i].Downloaded = true
			result.Comics[i].DownloadDir = dirs[0]
		}
	}

	RespondWithJSON(w, http.StatusOK, result)
}

// ChapterQueuePayload is the expected structure for queuing chapters.
type ChapterQueuePayload struct {
	ProviderID    string   `json:"provider_id"`
	ComicPathWord string   `json:"comic_path_word"`
	ChapterUUIDs  []string `json:"chapter_uuids"`
}

func (s *Server) handleAddChaptersToQueue(w http.ResponseWriter, r *http.Request) {
	var payload ChapterQueuePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if len(payload.ChapterUUIDs) == 0 {
		RespondWithError(w, http.StatusBadRequest, "No chapters provided to queue")
		return
	}

	provider, ok := providers.Get(payload.ProviderID)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Provider not found")
		return
	}

	comic, err := provider.GetComic(payload.ComicPathWord)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to get comic")
		return
	}

	wanted := make(map[string]bool, len(payload.ChapterUUIDs))
	for _, uuid := range payload.ChapterUUIDs {
		wanted[uuid] = true
	}
	var chapters []models.ChapterInfo
	for _, group := range comic.Groups {
		for _, ch := range group {
			if wanted[ch.ChapterUUID] {
				chapters = append(chapters, ch)
			}
		}
	}
	if len(chapters) == 0 {
		RespondWithError(w, http.StatusBadRequest, "None of the requested chapters belong to this comic")
		return
	}

	if err := s.store.AddChaptersToQueue(payload.ProviderID, comic, chapters); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to add chapters to download queue")
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": fmt.Sprintf("%d chapters have been added to the download queue.", len(chapters)),
	})
}

func (s *Server) handleGetDownloadQueue(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.GetDownloadQueue()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve download queue")
		return
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleQueueAction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	switch payload.Action {
	case "pause_all":
		downloader.PauseDownloads()
		s.store.PauseAllQueueItems()
	case "resume_all":
		downloader.ResumeDownloads()
		s.store.ResumeAllQueueItems()
	case "retry_failed":
		s.store.ResetFailedQueueItems()
	case "delete_completed":
		s.store.DeleteCompletedQueueItems()
	case "empty_queue":
		s.store.EmptyQueue()
	default:
		RespondWithError(w, http.StatusBadRequest, "Invalid action")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleQueueItemAction(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	switch payload.Action {
	case "pause":
		err = downloader.PauseQueueItem(s.app, s.store, itemID)
	case "resume":
		err = downloader.ResumeQueueItem(s.app, s.store, itemID)
	case "retry":
		err = downloader.RetryQueueItem(s.app, s.store, itemID)
	case "delete":
		err = s.store.DeleteQueueItem(itemID)
	default:
		RespondWithError(w, http.StatusBadRequest, "Invalid action")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
