// Package export turns downloaded chapters into CBZ archives, one per
// chapter, mirroring the download directory layout under the export
// directory.
package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mhiraki/comi-go/internal/core"
	"github.com/mhiraki/comi-go/internal/models"
)

// ComicInfo is the ComicRack metadata document readers look for inside a
// CBZ archive.
type ComicInfo struct {
	XMLName   xml.Name `xml:"ComicInfo"`
	Title     string   `xml:"Title,omitempty"`
	Series    string   `xml:"Series,omitempty"`
	Number    string   `xml:"Number,omitempty"`
	Writer    string   `xml:"Writer,omitempty"`
	Summary   string   `xml:"Summary,omitempty"`
	Manga     string   `xml:"Manga,omitempty"`
	PageCount int      `xml:"PageCount,omitempty"`
}

func comicInfoFrom(comic *models.Comic, ch models.ChapterInfo) ComicInfo {
	return ComicInfo{
		Title:     ch.ChapterTitle,
		Series:    comic.Title,
		Number:    strconv.FormatFloat(ch.Order, 'f', -1, 64),
		Writer:    comic.AuthorNames(),
		Summary:   comic.Brief,
		Manga:     "YesAndRightToLeft",
		PageCount: ch.ChapterSize,
	}
}

// CBZ exports every downloaded chapter of the comic as a CBZ archive. The
// archives land under <exportDir>/<comic's relative path>/cbz, keeping the
// chapter's directory levels. downloadDir and exportDir come from the
// current settings snapshot.
func CBZ(app *core.App, comic *models.Comic) error {
	if comic.DownloadDir == "" {
		return fmt.Errorf("comic %s is not downloaded", comic.PathWord)
	}

	s := app.Settings().Snapshot()
	relative, err := filepath.Rel(s.DownloadDir, comic.DownloadDir)
	if err != nil {
		return fmt.Errorf("comic directory %s is outside the download directory: %w", comic.DownloadDir, err)
	}
	cbzDir := filepath.Join(s.ExportDir, relative, "cbz")

	chapters := downloadedChapters(comic)
	if len(chapters) == 0 {
		return fmt.Errorf("comic %s has no downloaded chapters", comic.PathWord)
	}

	runID := uuid.New().String()
	total := len(chapters)
	sendExportProgress(app, runID, fmt.Sprintf("Exporting %s", comic.Title), "in_progress", 0, false)

	var current atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for _, ch := range chapters {
		ch := ch
		g.Go(func() error {
			if err := exportChapter(comic, ch, cbzDir); err != nil {
				return fmt.Errorf("%s - %s - %s: %w", comic.Title, ch.GroupTitle, ch.ChapterTitle, err)
			}
			n := current.Add(1)
			progress := float64(n) / float64(total) * 100
			sendExportProgress(app, runID,
				fmt.Sprintf("Exported %d of %d chapters", n, total),
				"in_progress", progress, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sendExportProgress(app, runID, err.Error(), "failed", 0, true)
		return err
	}

	sendExportProgress(app, runID, fmt.Sprintf("Exported %s to %s", comic.Title, cbzDir), "completed", 100, true)
	return nil
}

// exportChapter writes one chapter's CBZ, preserving the chapter's path
// levels relative to the comic directory.
func exportChapter(comic *models.Comic, ch models.ChapterInfo, cbzDir string) error {
	relative, err := filepath.Rel(comic.DownloadDir, ch.DownloadDir)
	if err != nil {
		return fmt.Errorf("chapter directory %s is outside the comic directory: %w", ch.DownloadDir, err)
	}

	targetDir := filepath.Join(cbzDir, filepath.Dir(relative))
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return err
	}

	zipPath := filepath.Join(targetDir, filepath.Base(ch.DownloadDir)+".cbz")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)

	w, err := zw.Create("ComicInfo.xml")
	if err != nil {
		return err
	}
	info, err := xml.MarshalIndent(comicInfoFrom(comic, ch), "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(append([]byte(xml.Header), info...)); err != nil {
		return err
	}

	pages, err := imagePaths(ch.DownloadDir)
	if err != nil {
		return err
	}
	for _, page := range pages {
		if err := addFileToZip(zw, page); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addFileToZip(zw *zip.Writer, path string) error {
	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// imagePaths lists the chapter's page images in name order.
func imagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}

func downloadedChapters(comic *models.Comic) []models.ChapterInfo {
	var chapters []models.ChapterInfo
	for _, group := range comic.Groups {
		for _, ch := range group {
			if ch.Downloaded && ch.DownloadDir != "" {
				chapters = append(chapters, ch)
			}
		}
	}
	return chapters
}

func sendExportProgress(app *core.App, runID, message, status string, progress float64, done bool) {
	app.WsHub().BroadcastJSON(models.ProgressUpdate{
		JobID:    "export:" + runID,
		Message:  message,
		Progress: progress,
		Status:   status,
		Done:     done,
	})
}
