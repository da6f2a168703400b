package downloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mhiraki/comi-go/internal/models"
	"github.com/mhiraki/comi-go/internal/pathtmpl"
	"github.com/mhiraki/comi-go/internal/settings"
	"github.com/mhiraki/comi-go/internal/util"
)

// templates caches parsed directory formats across downloads. The formats
// only change when the user saves settings, so cache hits are the norm.
var templates = pathtmpl.NewCache()

// ResolveComicDir renders the comic directory format for a queue item and
// anchors it under the download directory.
func ResolveComicDir(s settings.Settings, item *models.DownloadQueueItem) (string, error) {
	levels, err := renderLevels(s.ComicDirFmt, item.ComicContext(), pathtmpl.ComicFields)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{s.DownloadDir}, levels...)...), nil
}

// ResolveChapterDir renders the chapter directory format for a queue item
// underneath its comic directory. When SeparateChapterType is on and the
// chapter has a known type, a group/type level pair replaces the
// {group_title} level of the format, so regular chapters, volumes and
// extras land in sibling directories.
func ResolveChapterDir(s settings.Settings, item *models.DownloadQueueItem) (string, error) {
	comicDir, err := ResolveComicDir(s, item)
	if err != nil {
		return "", err
	}

	format := s.ChapterDirFmt
	var prefix []string
	if s.SeparateChapterType {
		if typeDir := chapterTypeDirName(item.ChapterType); typeDir != "" {
			prefix = util.JoinSanitized([]string{item.GroupTitle, typeDir})
			format = strings.ReplaceAll(format, "{group_title}/", "")
		}
	}

	levels, err := renderLevels(format, item.ChapterContext(), pathtmpl.ChapterFields)
	if err != nil {
		return "", err
	}
	levels = append(prefix, levels...)
	if len(levels) == 0 {
		return "", fmt.Errorf("chapter directory format %q rendered empty for chapter %s", s.ChapterDirFmt, item.ChapterUUID)
	}
	return filepath.Join(append([]string{comicDir}, levels...)...), nil
}

// chapterTypeDirName maps a chapter type to its directory name. Unknown
// types get no extra level.
func chapterTypeDirName(chapterType int64) string {
	switch chapterType {
	case 1:
		return "话"
	case 2:
		return "卷"
	case 3:
		return "番外"
	default:
		return ""
	}
}

// renderLevels renders a directory format and sanitizes each path level.
// Levels that sanitize to the empty string are dropped.
func renderLevels(format string, ctx pathtmpl.Context, known pathtmpl.FieldSet) ([]string, error) {
	tmpl, err := templates.Parse(format)
	if err != nil {
		return nil, fmt.Errorf("invalid directory format %q: %w", format, err)
	}
	segments, err := tmpl.RenderSegments(ctx, known)
	if err != nil {
		return nil, fmt.Errorf("directory format %q: %w", format, err)
	}
	return util.JoinSanitized(segments), nil
}
