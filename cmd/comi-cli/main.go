package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/mhiraki/comi-go/internal/assets"
	"github.com/mhiraki/comi-go/internal/config"
	"github.com/mhiraki/comi-go/internal/db"
	"github.com/mhiraki/comi-go/internal/library"
	"github.com/mhiraki/comi-go/internal/pathtmpl"
	"github.com/mhiraki/comi-go/internal/settings"
	"github.com/mhiraki/comi-go/internal/store"
)

// comi-cli checks directory templates and rebuilds the downloaded-comics
// index from the files on disk. The rescan is useful after moving the
// download directory or editing it by hand while the server is not running.
func main() {
	template := flag.String("template", "", "directory template to check, e.g. \"{group_title}/{order:0>4} {chapter_title}\"")
	level := flag.String("level", "chapter", "template level: comic or chapter")
	flag.Parse()

	if *template != "" {
		if err := previewTemplate(*template, *level); err != nil {
			fmt.Fprintf(os.Stderr, "invalid template: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rescan()
}

// previewTemplate parses and renders the template against an example
// context and prints the directory levels it would produce.
func previewTemplate(template, level string) error {
	var known pathtmpl.FieldSet
	ctx := pathtmpl.Context{
		"comic_uuid":      "8a1566d0-4e63-4ccc-97c1-47d40e26a839",
		"comic_path_word": "dianjuren",
		"comic_title":     "Chainsaw Man",
		"author":          "Tatsuki Fujimoto",
	}
	switch level {
	case "comic":
		known = pathtmpl.ComicFields
	case "chapter":
		known = pathtmpl.ChapterFields
		ctx["group_path_word"] = "default"
		ctx["group_title"] = "默認"
		ctx["chapter_uuid"] = "f5325e59-7a8a-4b23-9b77-4b6fb2dbd8a9"
		ctx["chapter_title"] = "第13话"
		ctx["order"] = 13.1
	default:
		return fmt.Errorf("unknown level %q, want comic or chapter", level)
	}

	tmpl, err := pathtmpl.Parse(template)
	if err != nil {
		return err
	}
	segments, err := tmpl.RenderSegments(ctx, known)
	if err != nil {
		return err
	}

	fmt.Printf("Template OK. Example: %s\n", filepath.Join(segments...))
	return nil
}

func rescan() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	mgr, err := settings.Load(filepath.Join(cfg.Data.Dir, "settings.json"), settings.Defaults(cfg.Data.Dir))
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	downloadDir := mgr.Snapshot().DownloadDir

	log.Printf("Scanning download directory: %s", downloadDir)

	// Refresh the comics table from the metadata files found on disk.
	st := store.New(database)
	count := 0
	err = filepath.WalkDir(downloadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() || d.Name() != library.ComicMetadataFile {
			return nil
		}
		comic, err := library.LoadComicMetadata(path)
		if err != nil {
			log.Printf("Warning: unreadable metadata %s: %v", path, err)
			return nil
		}
		if err := st.UpsertComic(comic.ProviderID, comic.PathWord, comic.Title, comic.DownloadDir); err != nil {
			log.Printf("Warning: could not index %s: %v", comic.Title, err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		log.Fatalf("Error scanning download directory: %v", err)
	}

	fmt.Printf("Index rebuilt: %d comics found.\n", count)
}
