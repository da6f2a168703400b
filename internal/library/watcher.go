// This file implements a file system watcher for the download directory.
// It uses OS-level file system events to keep the downloaded-comics index
// fresh when files are added, moved or deleted outside the app.

package library

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherService watches the download directory and rebuilds the index
// after changes settle down.
type WatcherService struct {
	index         *Index
	watcher       *fsnotify.Watcher
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a new file system watcher service for the
// given index.
func NewWatcherService(index *Index) *WatcherService {
	return &WatcherService{
		index:         index,
		debounceDelay: 2 * time.Second, // Wait for changes to settle before rescanning
	}
}

// Start begins watching the download directory for changes.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	root := w.index.Root()
	if err := os.MkdirAll(root, 0755); err != nil {
		watcher.Close()
		return err
	}

	// Watch the download directory tree. Files are watched via their
	// parent directory.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	w.stopChan = make(chan struct{})
	log.Printf("File watcher started for download directory: %s", root)
	go w.processEvents(watcher, w.stopChan)
	return nil
}

// Stop stops the file watcher service. The service can be started again
// afterwards, for example when the download directory changes.
func (w *WatcherService) Stop() error {
	if w.stopChan != nil {
		close(w.stopChan)
		w.stopChan = nil
	}
	if w.watcher != nil {
		err := w.watcher.Close()
		w.watcher = nil
		return err
	}
	return nil
}

func (w *WatcherService) processEvents(watcher *fsnotify.Watcher, stop chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// New directories need their own watch before anything
			// inside them is visible.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			}
			w.scheduleRescan()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		case <-stop:
			return
		}
	}
}

func (w *WatcherService) scheduleRescan() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		if err := w.index.Rescan(); err != nil {
			log.Printf("File watcher rescan failed: %v", err)
		}
	})
}
