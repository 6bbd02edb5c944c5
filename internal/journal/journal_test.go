package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/aestimo/internal/common"
	"github.com/ternarybob/aestimo/internal/models"
)

func openTestStore(t *testing.T) *Store {
	store, err := Open(filepath.Join(t.TempDir(), "journal"), common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(id string, finished time.Time, status models.JobStatus) models.JobRecord {
	return models.JobRecord{
		AssignmentID: id,
		JobID:        "j-" + id,
		Type:         models.JobTypeTest,
		Status:       status,
		StartedAt:    finished.Add(-10 * time.Second),
		FinishedAt:   finished,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, record("a-1", now.Add(-2*time.Minute), models.JobStatusSucceeded)))
	require.NoError(t, store.Record(ctx, record("a-2", now.Add(-time.Minute), models.JobStatusFailed)))
	require.NoError(t, store.Record(ctx, record("a-3", now, models.JobStatusSucceeded)))

	records, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a-3", records[0].AssignmentID)
	assert.Equal(t, "a-2", records[1].AssignmentID)
}

func TestRecordUpsertsByAssignment(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, record("a-1", now, models.JobStatusFailed)))
	require.NoError(t, store.Record(ctx, record("a-1", now.Add(time.Second), models.JobStatusSucceeded)))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.JobStatusSucceeded, records[0].Status)
}

func TestRecordDuration(t *testing.T) {
	rec := record("a-1", time.Now(), models.JobStatusSucceeded)
	assert.Equal(t, 10*time.Second, rec.Duration())
}
