// To handle all database interactions. This is our data access layer,
// keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mhiraki/comi-go/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertComic records (or refreshes) a downloaded comic in the index.
func (s *Store) UpsertComic(providerID, pathWord, title, dir string) error {
	query := `
        INSERT INTO comics (provider_id, path_word, title, dir, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(provider_id, path_word) DO UPDATE SET
            title = excluded.title,
            dir = excluded.dir,
            updated_at = excluded.updated_at;
    `
	_, err := s.db.Exec(query, providerID, pathWord, title, dir, time.Now())
	return err
}

// ListComics returns every downloaded comic, newest first.
func (s *Store) ListComics() ([]*models.DownloadedComic, error) {
	query := `
        SELECT id, provider_id, path_word, title, dir, updated_at
        FROM comics ORDER BY updated_at DESC
    `
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comics []*models.DownloadedComic
	for rows.Next() {
		var c models.DownloadedComic
		if err := rows.Scan(&c.ID, &c.ProviderID, &c.PathWord, &c.Title, &c.Dir, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comics = append(comics, &c)
	}
	return comics, rows.Err()
}

// GetComicByPathWord looks up a downloaded comic by its source identifier.
func (s *Store) GetComicByPathWord(providerID, pathWord string) (*models.DownloadedComic, error) {
	query := `
        SELECT id, provider_id, path_word, title, dir, updated_at
        FROM comics WHERE provider_id = ? AND path_word = ?
    `
	var c models.DownloadedComic
	err := s.db.QueryRow(query, providerID, pathWord).Scan(&c.ID, &c.ProviderID, &c.PathWord, &c.Title, &c.Dir, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetComicByID looks up a downloaded comic by its index row ID.
func (s *Store) GetComicByID(id int64) (*models.DownloadedComic, error) {
	query := `
        SELECT id, provider_id, path_word, title, dir, updated_at
        FROM comics WHERE id = ?
    `
	var c models.DownloadedComic
	err := s.db.QueryRow(query, id).Scan(&c.ID, &c.ProviderID, &c.PathWord, &c.Title, &c.Dir, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComicByID removes a comic from the downloaded index by row ID.
func (s *Store) DeleteComicByID(id int64) error {
	res, err := s.db.Exec("DELETE FROM comics WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("comic with ID %d not found", id)
	}
	return nil
}

// DeleteComic removes a comic from the downloaded index.
func (s *Store) DeleteComic(providerID, pathWord string) error {
	_, err := s.db.Exec("DELETE FROM comics WHERE provider_id = ? AND path_word = ?", providerID, pathWord)
	return err
}
