package models

import (
	"time"

	"github.com/mhiraki/comi-go/internal/pathtmpl"
)

// DownloadQueueItem is one queued chapter download. It carries every field
// the directory templates can reference so a worker can resolve the target
// path without re-fetching comic metadata.
type DownloadQueueItem struct {
	ID            int64     `json:"id"`
	ProviderID    string    `json:"provider_id"`
	ComicUUID     string    `json:"comic_uuid"`
	ComicPathWord string    `json:"comic_path_word"`
	ComicTitle    string    `json:"comic_title"`
	Author        string    `json:"author"`
	GroupPathWord string    `json:"group_path_word"`
	GroupTitle    string    `json:"group_title"`
	ChapterUUID   string    `json:"chapter_uuid"`
	ChapterTitle  string    `json:"chapter_title"`
	Order         float64   `json:"order"`
	ChapterType   int64     `json:"chapter_type"`
	Status        string    `json:"status"`   // "queued", "in_progress", "paused", "completed", "failed"
	Progress      int       `json:"progress"` // percentage
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// ComicContext returns the template context for comic-level templates.
func (i *DownloadQueueItem) ComicContext() pathtmpl.Context {
	return pathtmpl.Context{
		"comic_uuid":      i.ComicUUID,
		"comic_path_word": i.ComicPathWord,
		"comic_title":     i.ComicTitle,
		"author":          i.Author,
	}
}

// ChapterContext returns the template context for chapter-level templates.
func (i *DownloadQueueItem) ChapterContext() pathtmpl.Context {
	ctx := i.ComicContext()
	ctx["group_path_word"] = i.GroupPathWord
	ctx["group_title"] = i.GroupTitle
	ctx["chapter_uuid"] = i.ChapterUUID
	ctx["chapter_title"] = i.ChapterTitle
	ctx["order"] = i.Order
	return ctx
}

// DownloadedComic is one row of the downloaded-comics index.
type DownloadedComic struct {
	ID         int64     `json:"id"`
	PathWord   string    `json:"path_word"`
	Title      string    `json:"title"`
	ProviderID string    `json:"provider_id"`
	Dir        string    `json:"dir"`
	UpdatedAt  time.Time `json:"updated_at"`
}
