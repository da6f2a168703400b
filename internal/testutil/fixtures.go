package testutil

import (
	"database/sql"
	"testing"
	"time"
)

// InsertQueueItem seeds the download queue with one chapter in the given
// status and returns its row id.
func InsertQueueItem(t *testing.T, db *sql.DB, comicTitle, chapterTitle, chapterUUID, providerID, status string, progress int) int64 {
	t.Helper()
	res, err := db.Exec(`
        INSERT INTO download_queue
        (provider_id, comic_uuid, comic_path_word, comic_title, author,
         group_path_word, group_title, chapter_uuid, chapter_title,
         chapter_order, status, progress, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		providerID, "uuid-"+comicTitle, "pw-"+comicTitle, comicTitle, "Test Author",
		"default", "默認", chapterUUID, chapterTitle,
		1.0, status, progress, time.Now())
	if err != nil {
		t.Fatalf("Failed to insert queue item: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get inserted queue item id: %v", err)
	}
	return id
}
