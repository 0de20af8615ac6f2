package db

import (
	"database/sql"
	"time"
)

// Load returns the blob stored under key, or "" if there is none
func (db *DB) Load(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM blobs WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Save overwrites the blob stored under key
func (db *DB) Save(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// BlobInfo describes a stored blob without its contents
type BlobInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// ListBlobs returns all stored keys, most recently written first
func (db *DB) ListBlobs() ([]BlobInfo, error) {
	rows, err := db.Query(`
		SELECT key, LENGTH(value), updated_at
		FROM blobs ORDER BY updated_at DESC, key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blobs []BlobInfo
	for rows.Next() {
		var b BlobInfo
		if err := rows.Scan(&b.Key, &b.Size, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, rows.Err()
}

// DeleteBlob removes the blob stored under key
func (db *DB) DeleteBlob(key string) error {
	_, err := db.Exec("DELETE FROM blobs WHERE key = ?", key)
	return err
}
