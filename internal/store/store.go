// package store provides the durable ledgers backing the sync service: the
// song queue, the integration registry, and the flagged-images list.
//
// Each store wraps the shared SQLite handle and persists every mutation
// before returning, so a reader immediately after a completed call observes
// the new state. Queue ordering uses a sequence table incremented inside the
// insert transaction.
package store

import (
	"database/sql"
	"fmt"

	"github.com/songsnap/songsnap/internal/shared"
)

// nextSequence atomically increments and returns the next sequence number
// for the given table within an open transaction.
func nextSequence(tx *sql.Tx, table string) (int, error) {
	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return sequence, nil
}

// storeErr wraps low-level database failures so callers can distinguish a
// broken store from a domain miss via errors.Is(err, shared.ErrStoreUnavailable).
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", shared.ErrStoreUnavailable, op, err)
}
