// Package downloader runs the chapter download workers. Queued chapters
// come out of the database, pages are fetched concurrently into a hidden
// temp directory, and the directory is renamed into place only when every
// page made it.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mhiraki/comi-go/internal/core"
	"github.com/mhiraki/comi-go/internal/downloader/providers"
	"github.com/mhiraki/comi-go/internal/library"
	"github.com/mhiraki/comi-go/internal/models"
	"github.com/mhiraki/comi-go/internal/settings"
	"github.com/mhiraki/comi-go/internal/store"
)

// tempDirPrefix marks in-flight chapter directories. A crash leaves the
// prefix behind, so half-downloaded chapters never look complete.
const tempDirPrefix = ".downloading-"

var (
	jobQueue    chan *models.DownloadQueueItem
	isPaused    bool
	mu          sync.Mutex
	workerStops []chan struct{}
	// inflight holds the ids of items handed to a worker but not yet
	// finished, so the dispatcher never queues the same item twice.
	inflight          = make(map[int64]struct{})
	pageClient        = &http.Client{Timeout: 60 * time.Second}
	ErrDownloadPaused = fmt.Errorf("download paused by user")
)

// StartWorkerPool initializes and starts the download workers. The worker
// count follows the chapterConcurrency setting, including changes made
// while the pool is running.
func StartWorkerPool(app *core.App) {
	jobQueue = make(chan *models.DownloadQueueItem, 16)
	mu.Lock()
	inflight = make(map[int64]struct{})
	mu.Unlock()
	st := store.New(app.DB())

	// On startup, re-queue any items that were "in_progress".
	st.ResetInProgressQueueItems()

	resizeWorkers(app, st, app.Settings().Snapshot().ChapterConcurrency)

	sub, _ := app.Settings().Subscribe()
	go func() {
		for s := range sub {
			resizeWorkers(app, st, s.ChapterConcurrency)
		}
	}()

	// Periodically fetch queued jobs and feed them to the workers.
	go func() {
		for {
			if !IsPaused() {
				dispatchQueued(st)
			}
			time.Sleep(5 * time.Second)
		}
	}()
}

// dispatchQueued feeds queued items from the database to the workers. The
// status only flips to "in_progress" once a worker picks the item up, so
// rows already sitting in the channel or being processed still read as
// "queued" and must be skipped here.
func dispatchQueued(st *store.Store) {
	items, err := st.GetQueuedDownloadItems(cap(jobQueue))
	if err != nil {
		log.Printf("Error fetching queued items: %v", err)
		return
	}
	for _, item := range items {
		mu.Lock()
		_, dup := inflight[item.ID]
		if !dup {
			inflight[item.ID] = struct{}{}
		}
		mu.Unlock()
		if dup {
			continue
		}
		select {
		case jobQueue <- item:
		default:
			clearInflight(item.ID)
			return
		}
	}
}

func clearInflight(id int64) {
	mu.Lock()
	delete(inflight, id)
	mu.Unlock()
}

// resizeWorkers grows or shrinks the worker set to n. Shrinking stops
// workers after they finish their current job.
func resizeWorkers(app *core.App, st *store.Store, n int) {
	if n < 1 {
		n = 1
	}
	mu.Lock()
	defer mu.Unlock()
	for len(workerStops) < n {
		stop := make(chan struct{})
		workerStops = append(workerStops, stop)
		go worker(len(workerStops), app, st, stop)
	}
	for len(workerStops) > n {
		last := len(workerStops) - 1
		close(workerStops[last])
		workerStops = workerStops[:last]
	}
}

func worker(id int, app *core.App, st *store.Store, stop chan struct{}) {
	log.Printf("Starting download worker %d", id)
	for {
		select {
		case <-stop:
			log.Printf("Stopping download worker %d", id)
			return
		case job := <-jobQueue:
			st.UpdateQueueItemStatus(job.ID, "in_progress", "Starting download...")
			err := processDownload(app, st, job)
			switch {
			case errors.Is(err, ErrDownloadPaused):
				// Status was already set to "paused" by the API.
				log.Printf("Download paused for item %d", job.ID)
			case err != nil:
				errMsg := fmt.Sprintf("Download failed: %v", err)
				log.Println(errMsg)
				st.UpdateQueueItemStatus(job.ID, "failed", errMsg)
				sendDownloaderProgressUpdate(app, job.ID, errMsg, "failed", float64(job.Progress), "", false)
			default:
				st.UpdateQueueItemStatus(job.ID, "completed", "Download finished successfully.")
				sendDownloaderProgressUpdate(app, job.ID, "Download finished successfully.", "completed", 100, "", true)
			}

			clearInflight(job.ID)

			if interval := app.Settings().Snapshot().ChapterIntervalSec; interval > 0 {
				select {
				case <-stop:
					return
				case <-time.After(time.Duration(interval) * time.Second):
				}
			}
		}
	}
}

func processDownload(app *core.App, st *store.Store, job *models.DownloadQueueItem) error {
	provider, ok := providers.Get(job.ProviderID)
	if !ok {
		return fmt.Errorf("provider '%s' not found", job.ProviderID)
	}

	s := app.Settings().Snapshot()
	comicDir, err := ResolveComicDir(s, job)
	if err != nil {
		return err
	}
	chapterDir, err := ResolveChapterDir(s, job)
	if err != nil {
		return err
	}

	pageURLs, err := provider.GetPageURLs(job.ComicPathWord, job.ChapterUUID)
	if err != nil {
		return fmt.Errorf("could not get page URLs: %w", err)
	}
	if len(pageURLs) == 0 {
		return fmt.Errorf("no pages found for chapter")
	}

	tempDir := filepath.Join(filepath.Dir(chapterDir), tempDirPrefix+filepath.Base(chapterDir))
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanTempDir(tempDir, s.DownloadFormat)

	if err := downloadPages(app, st, job, s, pageURLs, tempDir); err != nil {
		return err
	}

	// A leftover directory from an earlier download of the same chapter
	// gives way to the fresh one.
	if err := os.RemoveAll(chapterDir); err != nil {
		return fmt.Errorf("failed to clear chapter directory: %w", err)
	}
	if err := os.Rename(tempDir, chapterDir); err != nil {
		return fmt.Errorf("failed to move chapter into place: %w", err)
	}

	if err := library.SaveChapterMetadata(chapterDir, chapterInfoFromItem(job)); err != nil {
		return fmt.Errorf("failed to save chapter metadata: %w", err)
	}

	if err := ensureComicMetadata(provider, st, job, comicDir); err != nil {
		// The chapter itself landed fine; losing the comic document is
		// recoverable on the next download.
		log.Printf("Failed to save comic metadata for %s: %v", job.ComicPathWord, err)
	}
	return nil
}

// downloadPages fetches all pages into tempDir, imgConcurrency at a time.
// Pages already present from an interrupted run are kept.
func downloadPages(app *core.App, st *store.Store, job *models.DownloadQueueItem, s settings.Settings, pageURLs []string, tempDir string) error {
	total := len(pageURLs)
	start := time.Now()
	var completed atomic.Int64
	paused := false

	g, ctx := errgroup.WithContext(context.Background())
	limit := s.ImageConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, pageURL := range pageURLs {
		// SetLimit makes Go block while all workers are busy, so this
		// pause check runs roughly once per page.
		if itemPaused(st, job.ID) {
			paused = true
			break
		}

		dest := filepath.Join(tempDir, fmt.Sprintf("%03d.%s", i+1, s.DownloadFormat))
		pageNum := i + 1
		pageURL := pageURL

		g.Go(func() error {
			if _, err := os.Stat(dest); err == nil {
				completed.Add(1)
				return nil
			}

			data, err := fetchPage(ctx, pageURL)
			if err != nil {
				return fmt.Errorf("failed to download page %d: %w", pageNum, err)
			}
			if err := os.WriteFile(dest, data, 0644); err != nil {
				return fmt.Errorf("failed to write page %d: %w", pageNum, err)
			}

			n := completed.Add(1)
			progress := int(float64(n) / float64(total) * 100)
			st.UpdateQueueItemProgress(job.ID, progress)
			speed := fmt.Sprintf("%.1f pages/s", float64(n)/time.Since(start).Seconds())
			sendDownloaderProgressUpdate(app, job.ID,
				fmt.Sprintf("Downloaded page %d of %d", n, total),
				"in_progress", float64(progress), speed, false)

			if s.ImageIntervalSec > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(time.Duration(s.ImageIntervalSec) * time.Second):
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if paused {
		return ErrDownloadPaused
	}
	if got := completed.Load(); got != int64(total) {
		return fmt.Errorf("downloaded %d of %d pages", got, total)
	}
	return nil
}

const pageFetchAttempts = 3

// pageRetryDelay is a variable so tests can shorten the backoff.
var pageRetryDelay = time.Second

type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.code)
}

// retryable reports whether a failed fetch is worth repeating. Transport
// errors and server-side statuses are transient; a 404 won't improve.
func retryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 500 || statusErr.code == http.StatusTooManyRequests
	}
	return true
}

// fetchPage downloads one image, retrying transient failures with a
// growing delay between attempts.
func fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= pageFetchAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * pageRetryDelay):
			}
		}
		data, err := fetchPageOnce(ctx, pageURL)
		if err == nil {
			return data, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", pageFetchAttempts, lastErr)
}

func fetchPageOnce(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := pageClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// cleanTempDir removes files left by a previous run in another download
// format, so a format change can't mix extensions in one chapter.
func cleanTempDir(tempDir, format string) {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), "."+format) {
			continue
		}
		os.Remove(filepath.Join(tempDir, entry.Name()))
	}
}

// ensureComicMetadata writes the comic's metadata document and cover the
// first time one of its chapters lands, and keeps the downloaded index row
// fresh.
func ensureComicMetadata(provider models.Provider, st *store.Store, job *models.DownloadQueueItem, comicDir string) error {
	if err := st.UpsertComic(job.ProviderID, job.ComicPathWord, job.ComicTitle, comicDir); err != nil {
		return err
	}

	metadataPath := filepath.Join(comicDir, library.ComicMetadataFile)
	if _, err := os.Stat(metadataPath); err == nil {
		return nil
	}

	comic, err := provider.GetComic(job.ComicPathWord)
	if err != nil {
		return fmt.Errorf("could not fetch comic details: %w", err)
	}
	if err := library.SaveComicMetadata(comicDir, comic); err != nil {
		return err
	}

	if comic.CoverURL != "" {
		data, err := fetchPage(context.Background(), comic.CoverURL)
		if err == nil {
			if err := library.SaveCoverThumbnail(comicDir, data); err != nil {
				log.Printf("Failed to save cover for %s: %v", job.ComicPathWord, err)
			}
		}
	}
	return nil
}

func chapterInfoFromItem(job *models.DownloadQueueItem) models.ChapterInfo {
	return models.ChapterInfo{
		ChapterUUID:   job.ChapterUUID,
		ChapterTitle:  job.ChapterTitle,
		ComicUUID:     job.ComicUUID,
		ComicTitle:    job.ComicTitle,
		ComicPathWord: job.ComicPathWord,
		GroupPathWord: job.GroupPathWord,
		GroupTitle:    job.GroupTitle,
		Order:         job.Order,
		ChapterType:   job.ChapterType,
	}
}

func itemPaused(st *store.Store, id int64) bool {
	item, err := st.GetDownloadQueueItem(id)
	return err == nil && item != nil && item.Status == "paused"
}

// Control functions for the download queue
func PauseDownloads() { mu.Lock(); isPaused = true; mu.Unlock(); log.Println("Download queue paused.") }
func ResumeDownloads() {
	mu.Lock()
	isPaused = false
	mu.Unlock()
	log.Println("Download queue resumed.")
}
func IsPaused() bool { mu.Lock(); defer mu.Unlock(); return isPaused }

// PauseQueueItem pauses a specific item and broadcasts the status change
func PauseQueueItem(app *core.App, st *store.Store, itemID int64) error {
	if err := st.PauseQueueItem(itemID); err != nil {
		return err
	}

	// Get current item to preserve progress
	currentItem, getErr := st.GetDownloadQueueItem(itemID)
	progress := 0.0
	if getErr == nil && currentItem != nil {
		progress = float64(currentItem.Progress)
	}

	sendDownloaderProgressUpdate(app, itemID, "Download paused by user", "paused", progress, "", false)
	return nil
}

// ResumeQueueItem resumes a specific item and broadcasts the status change
func ResumeQueueItem(app *core.App, st *store.Store, itemID int64) error {
	if err := st.ResumeQueueItem(itemID); err != nil {
		return err
	}

	// Get current item to preserve progress
	currentItem, getErr := st.GetDownloadQueueItem(itemID)
	progress := 0.0
	if getErr == nil && currentItem != nil {
		progress = float64(currentItem.Progress)
	}

	sendDownloaderProgressUpdate(app, itemID, "Download resumed by user", "queued", progress, "", false)
	return nil
}

// RetryQueueItem re-queues a failed item and broadcasts the status change
func RetryQueueItem(app *core.App, st *store.Store, itemID int64) error {
	if err := st.RetryQueueItem(itemID); err != nil {
		return err
	}
	sendDownloaderProgressUpdate(app, itemID, "Re-queued for retry by user", "queued", 0, "", false)
	return nil
}

func sendDownloaderProgressUpdate(app *core.App, itemID int64, message string, status string, progress float64, speed string, done bool) {
	app.WsHub().BroadcastJSON(models.ProgressUpdate{
		JobID:    "downloader",
		Message:  message,
		Progress: progress,
		ItemID:   itemID,
		Status:   status,
		Speed:    speed,
		Done:     done,
	})
}
