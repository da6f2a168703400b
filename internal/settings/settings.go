// Package settings holds the user-editable configuration document: where
// downloads land, how directories are named, and how aggressively the
// downloader runs. The document is persisted as pretty-printed JSON keyed
// by camelCase setting names and is the single source of truth observed by
// the worker pool, the updater and the API.
package settings

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/mhiraki/comi-go/internal/pathtmpl"
)

const DefaultAPIDomain = "api.2025copy.com"

// Settings is an immutable snapshot of the configuration document.
// Mutations go through Manager.Update, which produces a new snapshot.
type Settings struct {
	Token              string `json:"token"`
	APIDomain          string `json:"apiDomain"`
	DownloadDir        string `json:"downloadDir"`
	ExportDir          string `json:"exportDir"`
	DownloadFormat     string `json:"downloadFormat"` // "jpg" or "webp"
	ChapterConcurrency int    `json:"chapterConcurrency"`
	ImageConcurrency   int    `json:"imgConcurrency"`
	ChapterIntervalSec int    `json:"chapterDownloadIntervalSec"`
	ImageIntervalSec   int    `json:"imgDownloadIntervalSec"`
	UpdateIntervalSec  int    `json:"updateDownloadedComicsIntervalSec"`
	ComicDirFmt        string `json:"comicDirFmt"`
	ChapterDirFmt      string `json:"chapterDirFmt"`
	// SeparateChapterType groups chapters into 话/卷/番外 directories
	// between the group and chapter levels.
	SeparateChapterType bool `json:"separateChapterType"`
}

// Defaults returns the settings a fresh installation starts with. dataDir
// anchors the download and export directories.
func Defaults(dataDir string) Settings {
	return Settings{
		APIDomain:          DefaultAPIDomain,
		DownloadDir:        filepath.Join(dataDir, "downloads"),
		ExportDir:          filepath.Join(dataDir, "exports"),
		DownloadFormat:     "webp",
		ChapterConcurrency: 3,
		ImageConcurrency:   runtime.NumCPU(),
		ComicDirFmt:        "{comic_title}",
		ChapterDirFmt:      "{group_title}/{order} {chapter_title}",
	}
}

// sample contexts used to validate directory formats before they are
// accepted, so a template bug surfaces at save time and not mid-download.
var (
	sampleComicContext = pathtmpl.Context{
		"comic_uuid":      "8a1566d0-4e63-4ccc-97c1-47d40e26a839",
		"comic_path_word": "dianjuren",
		"comic_title":     "Chainsaw Man",
		"author":          "Tatsuki Fujimoto",
	}
	sampleChapterContext = pathtmpl.Context{
		"comic_uuid":      "8a1566d0-4e63-4ccc-97c1-47d40e26a839",
		"comic_path_word": "dianjuren",
		"comic_title":     "Chainsaw Man",
		"author":          "Tatsuki Fujimoto",
		"group_path_word": "default",
		"group_title":     "默認",
		"chapter_uuid":    "f5325e59-7a8a-4b23-9b77-4b6fb2dbd8a9",
		"chapter_title":   "第13话",
		"order":           13.1,
	}
)

// Validate checks a candidate snapshot. Both directory formats must parse
// and render against their field vocabularies; a malformed template blocks
// the save rather than producing a wrong path later.
func (s Settings) Validate() error {
	if s.DownloadDir == "" {
		return fmt.Errorf("downloadDir must not be empty")
	}
	if s.ExportDir == "" {
		return fmt.Errorf("exportDir must not be empty")
	}
	if s.DownloadFormat != "jpg" && s.DownloadFormat != "webp" {
		return fmt.Errorf("downloadFormat must be \"jpg\" or \"webp\", got %q", s.DownloadFormat)
	}

	comicTmpl, err := pathtmpl.Parse(s.ComicDirFmt)
	if err != nil {
		return fmt.Errorf("comicDirFmt: %w", err)
	}
	if _, err := comicTmpl.Render(sampleComicContext, pathtmpl.ComicFields); err != nil {
		return fmt.Errorf("comicDirFmt: %w", err)
	}

	chapterTmpl, err := pathtmpl.Parse(s.ChapterDirFmt)
	if err != nil {
		return fmt.Errorf("chapterDirFmt: %w", err)
	}
	if _, err := chapterTmpl.Render(sampleChapterContext, pathtmpl.ChapterFields); err != nil {
		return fmt.Errorf("chapterDirFmt: %w", err)
	}

	return nil
}

// normalize clamps values the UI could send as zero so the worker pool
// never starts with no workers.
func (s Settings) normalize() Settings {
	if s.ChapterConcurrency < 1 {
		s.ChapterConcurrency = 1
	}
	if s.ImageConcurrency < 1 {
		s.ImageConcurrency = 1
	}
	if s.ChapterIntervalSec < 0 {
		s.ChapterIntervalSec = 0
	}
	if s.ImageIntervalSec < 0 {
		s.ImageIntervalSec = 0
	}
	if s.UpdateIntervalSec < 0 {
		s.UpdateIntervalSec = 0
	}
	return s
}
