package models

import "strings"

// Author is one credited author of a comic.
type Author struct {
	Name     string `json:"name"`
	PathWord string `json:"path_word"`
}

// Group is a chapter group on the source site (default group, full-color
// variants, anthologies and so on).
type Group struct {
	PathWord string `json:"path_word"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// Comic is the full metadata of a comic together with its chapters, keyed
// by group path word.
type Comic struct {
	UUID       string                   `json:"uuid"`
	Title      string                   `json:"title"`
	PathWord   string                   `json:"pathWord"`
	Authors    []Author                 `json:"authors"`
	Status     string                   `json:"status"` // "ongoing" or "completed"
	Brief      string                   `json:"brief,omitempty"`
	CoverURL   string                   `json:"coverUrl,omitempty"`
	ProviderID string                   `json:"providerId"`
	Groups     map[string][]ChapterInfo `json:"groups"`

	// Set from the on-disk index, never persisted in metadata files.
	Downloaded  bool   `json:"downloaded,omitempty"`
	DownloadDir string `json:"downloadDir,omitempty"`
}

// AuthorNames joins all author names the way directory templates expect
// the "author" field: a single comma-separated string.
func (c *Comic) AuthorNames() string {
	names := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// ChapterInfo describes a single chapter. It carries the comic and group
// fields alongside the chapter's own so one value is enough to resolve a
// chapter directory template.
type ChapterInfo struct {
	ChapterUUID   string  `json:"chapterUuid"`
	ChapterTitle  string  `json:"chapterTitle"`
	ChapterSize   int     `json:"chapterSize"` // pages in this chapter
	ComicUUID     string  `json:"comicUuid"`
	ComicTitle    string  `json:"comicTitle"`
	ComicPathWord string  `json:"comicPathWord"`
	GroupPathWord string  `json:"groupPathWord"`
	GroupTitle    string  `json:"groupTitle"`
	GroupSize     int     `json:"groupSize"`   // chapters in this chapter's group
	Order         float64 `json:"order"`       // position in the group, may be fractional (13.1)
	ChapterType   int64   `json:"chapterType"` // 1 regular, 2 volume, 3 extra

	// Set from the on-disk index, never persisted in metadata files.
	Downloaded  bool   `json:"downloaded,omitempty"`
	DownloadDir string `json:"downloadDir,omitempty"`
}
