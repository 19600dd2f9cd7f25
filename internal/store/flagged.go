package store

import (
	"database/sql"
	"time"

	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
)

// FlaggedImageStore is the durable ledger of captured images that produced
// no usable songs. Entries never expire on their own; they are removed by
// explicit dismissal or a bulk clear.
type FlaggedImageStore struct {
	db *sql.DB
}

// NewFlaggedImageStore creates a FlaggedImageStore backed by the given database.
func NewFlaggedImageStore(db *sql.DB) *FlaggedImageStore {
	return &FlaggedImageStore{db: db}
}

// Add records one unprocessable image with a human-readable cause.
func (f *FlaggedImageStore) Add(imageURI, cause string) (*models.FlaggedImage, error) {
	tx, err := f.db.Begin()
	if err != nil {
		return nil, storeErr("begin add flagged image", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(tx, "flagged_images")
	if err != nil {
		return nil, storeErr("assign sequence", err)
	}

	flag := &models.FlaggedImage{
		ID:        shared.GenerateID(),
		Sequence:  sequence,
		ImageURI:  imageURI,
		Error:     cause,
		FlaggedAt: time.Now().UTC(),
	}

	_, err = tx.Exec(`
		INSERT INTO flagged_images (id, sequence, image_uri, error, flagged_at)
		VALUES (?, ?, ?, ?, ?)
	`, flag.ID, flag.Sequence, flag.ImageURI, flag.Error, flag.FlaggedAt)
	if err != nil {
		return nil, storeErr("insert flagged image", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit add flagged image", err)
	}

	return flag, nil
}

// List returns all flagged images, newest first. The sequence assigned at
// insert breaks same-timestamp ties so the order is stable.
func (f *FlaggedImageStore) List() ([]*models.FlaggedImage, error) {
	rows, err := f.db.Query(`
		SELECT id, sequence, image_uri, error, flagged_at
		FROM flagged_images
		ORDER BY sequence DESC
	`)
	if err != nil {
		return nil, storeErr("list flagged images", err)
	}
	defer rows.Close()

	var flags []*models.FlaggedImage
	for rows.Next() {
		flag := &models.FlaggedImage{}
		if err := rows.Scan(&flag.ID, &flag.Sequence, &flag.ImageURI, &flag.Error, &flag.FlaggedAt); err != nil {
			return nil, storeErr("scan flagged image", err)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate flagged images", err)
	}

	return flags, nil
}

// Dismiss removes one flagged image by id.
func (f *FlaggedImageStore) Dismiss(id string) error {
	result, err := f.db.Exec("DELETE FROM flagged_images WHERE id = ?", id)
	if err != nil {
		return storeErr("dismiss flagged image", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("dismiss flagged image", err)
	}
	if rows == 0 {
		return shared.ErrInvalidInput
	}
	return nil
}

// Clear removes every flagged image.
func (f *FlaggedImageStore) Clear() error {
	if _, err := f.db.Exec("DELETE FROM flagged_images"); err != nil {
		return storeErr("clear flagged images", err)
	}
	return nil
}
