package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mhiraki/comi-go/internal/models"
)

const queueColumns = `
    id, provider_id, comic_uuid, comic_path_word, comic_title, author,
    group_path_word, group_title, chapter_uuid, chapter_title, chapter_order,
    chapter_type, status, progress, message, created_at
`

func scanQueueItem(row interface{ Scan(...any) error }) (*models.DownloadQueueItem, error) {
	var item models.DownloadQueueItem
	var msg sql.NullString
	err := row.Scan(
		&item.ID, &item.ProviderID, &item.ComicUUID, &item.ComicPathWord,
		&item.ComicTitle, &item.Author, &item.GroupPathWord, &item.GroupTitle,
		&item.ChapterUUID, &item.ChapterTitle, &item.Order, &item.ChapterType,
		&item.Status, &item.Progress, &msg, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Message = msg.String
	return &item, nil
}

// AddChaptersToQueue adds multiple chapters to the download queue in a
// single transaction. A chapter already present for the same provider is
// ignored rather than duplicated.
func (s *Store) AddChaptersToQueue(providerID string, comic *models.Comic, chapters []models.ChapterInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT OR IGNORE INTO download_queue
        (provider_id, comic_uuid, comic_path_word, comic_title, author,
         group_path_word, group_title, chapter_uuid, chapter_title,
         chapter_order, chapter_type, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	author := comic.AuthorNames()
	for _, ch := range chapters {
		_, err := stmt.Exec(
			providerID, comic.UUID, comic.PathWord, comic.Title, author,
			ch.GroupPathWord, ch.GroupTitle, ch.ChapterUUID, ch.ChapterTitle,
			ch.Order, ch.ChapterType, time.Now(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetDownloadQueue returns every queue item, newest first.
func (s *Store) GetDownloadQueue() ([]*models.DownloadQueueItem, error) {
	rows, err := s.db.Query("SELECT " + queueColumns + " FROM download_queue ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.DownloadQueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetQueuedDownloadItems retrieves a limited number of items with a
// 'queued' status.
func (s *Store) GetQueuedDownloadItems(limit int) ([]*models.DownloadQueueItem, error) {
	rows, err := s.db.Query("SELECT "+queueColumns+" FROM download_queue WHERE status = 'queued' ORDER BY created_at ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.DownloadQueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetDownloadQueueItem retrieves a single item from the download queue by ID.
func (s *Store) GetDownloadQueueItem(id int64) (*models.DownloadQueueItem, error) {
	row := s.db.QueryRow("SELECT "+queueColumns+" FROM download_queue WHERE id = ?", id)
	return scanQueueItem(row)
}

// UpdateQueueItemStatus changes an item's status and message.
func (s *Store) UpdateQueueItemStatus(id int64, status, message string) error {
	_, err := s.db.Exec("UPDATE download_queue SET status = ?, message = ? WHERE id = ?", status, message, id)
	return err
}

// UpdateQueueItemProgress changes an item's progress percentage.
func (s *Store) UpdateQueueItemProgress(id int64, progress int) error {
	_, err := s.db.Exec("UPDATE download_queue SET progress = ? WHERE id = ?", progress, id)
	return err
}

// ResetInProgressQueueItems sets items from 'in_progress' back to 'queued'
// on startup.
func (s *Store) ResetInProgressQueueItems() error {
	query := "UPDATE download_queue SET status = 'queued', progress = 0, message = 'Re-queued after restart' WHERE status = 'in_progress'"
	_, err := s.db.Exec(query)
	return err
}

// PauseAllQueueItems sets all items in 'in_progress' or 'queued' to 'paused'.
func (s *Store) PauseAllQueueItems() error {
	query := "UPDATE download_queue SET status = 'paused', message = 'Paused by user' WHERE status = 'in_progress' OR status = 'queued'"
	_, err := s.db.Exec(query)
	return err
}

// ResumeAllQueueItems sets all items in 'paused' back to 'queued'.
func (s *Store) ResumeAllQueueItems() error {
	query := "UPDATE download_queue SET status = 'queued', message = 'Resumed by user' WHERE status = 'paused'"
	_, err := s.db.Exec(query)
	return err
}

// ResetFailedQueueItems sets items from 'failed' back to 'queued' to be retried.
func (s *Store) ResetFailedQueueItems() error {
	query := "UPDATE download_queue SET status = 'queued', progress = 0, message = 'Re-queued by user' WHERE status = 'failed'"
	_, err := s.db.Exec(query)
	return err
}

// DeleteCompletedQueueItems removes successfully completed items from the queue.
func (s *Store) DeleteCompletedQueueItems() error {
	_, err := s.db.Exec("DELETE FROM download_queue WHERE status = 'completed'")
	return err
}

// EmptyQueue removes all items from the queue that are not completed or in
// progress.
func (s *Store) EmptyQueue() error {
	_, err := s.db.Exec("DELETE FROM download_queue WHERE status = 'queued' OR status = 'failed' OR status = 'paused'")
	return err
}

// DeleteQueueItem removes a specific item from the download queue by ID.
func (s *Store) DeleteQueueItem(id int64) error {
	_, err := s.db.Exec("DELETE FROM download_queue WHERE id = ?", id)
	return err
}

// PauseQueueItem pauses a specific item in the download queue by ID.
func (s *Store) PauseQueueItem(id int64) error {
	result, err := s.db.Exec("UPDATE download_queue SET status = 'paused', message = 'Paused by user' WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("download queue item with ID %d not found", id)
	}
	return nil
}

// ResumeQueueItem resumes a specific item in the download queue by ID.
func (s *Store) ResumeQueueItem(id int64) error {
	result, err := s.db.Exec("UPDATE download_queue SET status = 'queued', message = 'Resumed by user' WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("download queue item with ID %d not found", id)
	}
	return nil
}

// RetryQueueItem retries a specific failed item in the download queue by ID.
func (s *Store) RetryQueueItem(id int64) error {
	result, err := s.db.Exec("UPDATE download_queue SET status = 'queued', progress = 0, message = 'Re-queued for retry by user' WHERE id = ? AND status = 'failed'", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("download queue item with ID %d not found or not in failed status", id)
	}
	return nil
}

// GetChapterUUIDsInQueue returns all chapter UUIDs for a given comic that
// are currently in the download queue, to prevent adding duplicates.
func (s *Store) GetChapterUUIDsInQueue(providerID, comicPathWord string) ([]string, error) {
	rows, err := s.db.Query("SELECT chapter_uuid FROM download_queue WHERE provider_id = ? AND comic_path_word = ?", providerID, comicPathWord)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return nil, err
		}
		uuids = append(uuids, uuid)
	}
	return uuids, rows.Err()
}
