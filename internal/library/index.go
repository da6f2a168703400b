package library

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/mhiraki/comi-go/internal/models"
)

// Index maps comic path words to the directories that hold their metadata
// files. It is rebuilt by walking the download directory and is consulted
// to mark comics and chapters as downloaded.
type Index struct {
	mu          sync.RWMutex
	downloadDir string
	comicDirs   map[string][]string // path_word -> comic directories
}

// NewIndex creates an index rooted at the download directory. Call Rescan
// before first use.
func NewIndex(downloadDir string) *Index {
	return &Index{
		downloadDir: downloadDir,
		comicDirs:   make(map[string][]string),
	}
}

// SetRoot points the index at a new download directory (after a settings
// change) and rebuilds it.
func (ix *Index) SetRoot(downloadDir string) error {
	ix.mu.Lock()
	ix.downloadDir = downloadDir
	ix.mu.Unlock()
	return ix.Rescan()
}

// Root returns the download directory the index currently watches.
func (ix *Index) Root() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.downloadDir
}

// Rescan rebuilds the path-word map by walking the download directory for
// comic metadata files.
func (ix *Index) Rescan() error {
	ix.mu.RLock()
	root := ix.downloadDir
	ix.mu.RUnlock()

	dirs := make(map[string][]string)
	if _, err := os.Stat(root); err == nil {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Keep walking; a single unreadable entry should not
				// wipe the whole index.
				log.Printf("library index: skipping %s: %v", path, err)
				return nil
			}
			if d.IsDir() || d.Name() != ComicMetadataFile {
				return nil
			}
			comic, err := LoadComicMetadata(path)
			if err != nil {
				log.Printf("library index: unreadable metadata %s: %v", path, err)
				return nil
			}
			dir := filepath.Dir(path)
			dirs[comic.PathWord] = append(dirs[comic.PathWord], dir)
			return nil
		})
		if err != nil {
			return err
		}
	}

	ix.mu.Lock()
	ix.comicDirs = dirs
	ix.mu.Unlock()
	return nil
}

// DirsFor returns the download directories holding the given comic, if any.
func (ix *Index) DirsFor(pathWord string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.comicDirs[pathWord]
}

// MarkDownloaded flips the downloaded flags on a comic and its chapters
// according to what is on disk. Chapter state comes from the chapter
// metadata files under the comic directory.
func (ix *Index) MarkDownloaded(comic *models.Comic) {
	dirs := ix.DirsFor(comic.PathWord)
	if len(dirs) == 0 {
		return
	}
	comicDir := dirs[0]
	comic.Downloaded = true
	comic.DownloadDir = comicDir

	// chapter_uuid -> chapter directory
	downloaded := make(map[string]string)
	filepath.WalkDir(comicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ChapterMetadataFile {
			return nil
		}
		info, err := LoadChapterMetadata(path)
		if err != nil {
			return nil
		}
		downloaded[info.ChapterUUID] = filepath.Dir(path)
		return nil
	})

	for groupPathWord, chapters := range comic.Groups {
		for i := range chapters {
			if dir, ok := downloaded[chapters[i].ChapterUUID]; ok {
				chapters[i].Downloaded = true
				chapters[i].DownloadDir = dir
			}
		}
		comic.Groups[groupPathWord] = chapters
	}
}
