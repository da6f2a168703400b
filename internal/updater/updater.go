// Package updater periodically re-checks downloaded comics against their
// source and queues chapters that appeared since the last download.
package updater

import (
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mhiraki/comi-go/internal/core"
	"github.com/mhiraki/comi-go/internal/downloader/providers"
	"github.com/mhiraki/comi-go/internal/library"
	"github.com/mhiraki/comi-go/internal/models"
	"github.com/mhiraki/comi-go/internal/store"
)

const jobTag = "update-downloaded-comics"

// Service holds the dependencies for the downloaded-comics checker.
type Service struct {
	app       *core.App
	st        *store.Store
	scheduler *gocron.Scheduler
}

// NewService creates a new updater service.
func NewService(app *core.App) *Service {
	return &Service{
		app:       app,
		st:        store.New(app.DB()),
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start runs the updater in the background. The check interval follows the
// settings document, including changes made while running; an interval of
// zero disables the scheduled check.
func (s *Service) Start() {
	s.scheduler.SingletonModeAll()
	s.schedule(s.app.Settings().Snapshot().UpdateIntervalSec)
	s.scheduler.StartAsync()

	sub, _ := s.app.Settings().Subscribe()
	go func() {
		for snap := range sub {
			s.scheduler.RemoveByTag(jobTag)
			s.schedule(snap.UpdateIntervalSec)
		}
	}()
}

// Stop halts the scheduler. Running checks finish first.
func (s *Service) Stop() {
	s.scheduler.Stop()
}

func (s *Service) schedule(intervalSec int) {
	if intervalSec <= 0 {
		log.Println("Update interval is 0, scheduled comic updates are disabled.")
		return
	}
	log.Printf("Scheduling downloaded-comics update every %d seconds.", intervalSec)
	_, err := s.scheduler.Every(intervalSec).Seconds().Tag(jobTag).Do(s.UpdateAllComics)
	if err != nil {
		log.Printf("Error scheduling comic updates: %v", err)
	}
}

// UpdateAllComics checks every comic in the downloaded index for new
// chapters.
func (s *Service) UpdateAllComics() {
	log.Println("Running scheduled downloaded-comics update...")
	comics, err := s.st.ListComics()
	if err != nil {
		log.Printf("Update Error: Failed to list downloaded comics: %v", err)
		return
	}
	for _, c := range comics {
		if err := s.UpdateComic(c); err != nil {
			log.Printf("Update Error: %s: %v", c.PathWord, err)
		}
	}
	log.Println("Finished scheduled downloaded-comics update.")
}

// UpdateComic re-fetches one comic and queues chapters that are neither
// downloaded nor already in the queue. The on-disk metadata document is
// refreshed along the way.
func (s *Service) UpdateComic(c *models.DownloadedComic) error {
	provider, ok := providers.Get(c.ProviderID)
	if !ok {
		log.Printf("Update Error: Provider '%s' not found for comic %s", c.ProviderID, c.PathWord)
		return nil
	}

	comic, err := provider.GetComic(c.PathWord)
	if err != nil {
		return err
	}

	queued, err := s.st.GetChapterUUIDsInQueue(c.ProviderID, c.PathWord)
	if err != nil {
		return err
	}
	skip := downloadedChapterUUIDs(c.Dir)
	for _, uuid := range queued {
		skip[uuid] = true
	}

	var newChapters []models.ChapterInfo
	for _, group := range comic.Groups {
		for _, ch := range group {
			if !skip[ch.ChapterUUID] {
				newChapters = append(newChapters, ch)
			}
		}
	}

	if len(newChapters) > 0 {
		log.Printf("Found %d new chapters for '%s'. Queuing for download.", len(newChapters), comic.Title)
		if err := s.st.AddChaptersToQueue(c.ProviderID, comic, newChapters); err != nil {
			return err
		}
		s.app.WsHub().BroadcastJSON(models.ProgressUpdate{
			JobID:   "updater",
			Message: comic.Title,
			Status:  "queued_new_chapters",
		})
	}

	// Keep the metadata document and the index row current even when
	// nothing new was queued; titles and chapter lists drift upstream.
	if err := library.SaveComicMetadata(c.Dir, comic); err != nil {
		return err
	}
	return s.st.UpsertComic(c.ProviderID, c.PathWord, comic.Title, c.Dir)
}

// downloadedChapterUUIDs walks a comic directory for chapter metadata
// files and collects the chapter UUIDs found there.
func downloadedChapterUUIDs(comicDir string) map[string]bool {
	uuids := make(map[string]bool)
	filepath.WalkDir(comicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != library.ChapterMetadataFile {
			return nil
		}
		info, err := library.LoadChapterMetadata(path)
		if err != nil {
			return nil
		}
		uuids[info.ChapterUUID] = true
		return nil
	})
	return uuids
}
