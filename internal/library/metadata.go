// Package library manages everything living under the download directory:
// per-comic and per-chapter metadata files, the downloaded-comics index
// built from them, cover thumbnails and the filesystem watcher.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mhiraki/comi-go/internal/models"
)

const (
	ComicMetadataFile   = "metadata.json"
	ChapterMetadataFile = "chapter.json"
)

// SaveComicMetadata writes the comic's metadata document into its download
// directory. Downloaded-state fields are stripped first; they are derived
// from the filesystem on load, never persisted.
func SaveComicMetadata(dir string, comic *models.Comic) error {
	clone := *comic
	clone.Downloaded = false
	clone.DownloadDir = ""
	groups := make(map[string][]models.ChapterInfo, len(clone.Groups))
	for groupPathWord, chapters := range clone.Groups {
		cleaned := make([]models.ChapterInfo, len(chapters))
		for i, ch := range chapters {
			ch.Downloaded = false
			ch.DownloadDir = ""
			cleaned[i] = ch
		}
		groups[groupPathWord] = cleaned
	}
	clone.Groups = groups

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create comic directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(&clone, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comic metadata: %w", err)
	}
	path := filepath.Join(dir, ComicMetadataFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadComicMetadata reads a comic metadata document and marks it
// downloaded at its on-disk location.
func LoadComicMetadata(path string) (*models.Comic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var comic models.Comic
	if err := json.Unmarshal(data, &comic); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	comic.Downloaded = true
	comic.DownloadDir = filepath.Dir(path)
	return &comic, nil
}

// SaveChapterMetadata writes a chapter's metadata document into its
// download directory, stripping the downloaded-state fields.
func SaveChapterMetadata(dir string, info models.ChapterInfo) error {
	info.Downloaded = false
	info.DownloadDir = ""

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create chapter directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(&info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chapter metadata: %w", err)
	}
	path := filepath.Join(dir, ChapterMetadataFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadChapterMetadata reads a chapter metadata document and marks it
// downloaded at its on-disk location.
func LoadChapterMetadata(path string) (*models.ChapterInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var info models.ChapterInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	info.Downloaded = true
	info.DownloadDir = filepath.Dir(path)
	return &info, nil
}
