// -----------------------------------------------------------------------
// Job Journal - Local record of terminal results, kept for operators
// -----------------------------------------------------------------------

package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/aestimo/internal/models"
)

// Store persists one JobRecord per completed assignment in a local Badger
// database under the cache directory. Journal failures never fail a job.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open opens (or creates) the journal database at path.
func Open(path string, logger arbor.ILogger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Job journal opened")
	return &Store{store: store, logger: logger}, nil
}

// Record upserts the journal entry for an assignment.
func (s *Store) Record(ctx context.Context, rec models.JobRecord) error {
	if err := s.store.Upsert(rec.AssignmentID, rec); err != nil {
		return fmt.Errorf("failed to record assignment %s: %w", rec.AssignmentID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]models.JobRecord, error) {
	var records []models.JobRecord
	query := badgerhold.Where("AssignmentID").Ne("").SortBy("FinishedAt").Reverse().Limit(limit)
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	return records, nil
}

// Close closes the journal database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
