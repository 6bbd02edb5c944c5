// -----------------------------------------------------------------------
// Test Handler - Plumbing verification job
// -----------------------------------------------------------------------

package testworkers

import (
	"context"
	"time"

	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/worker"
)

// testJobDuration approximates a short assessment so the claim, dispatch,
// and reporting path can be exercised end to end.
const testJobDuration = 10 * time.Second

// HandleTest sleeps and returns an empty output.
func HandleTest(ctx context.Context, jc *worker.Context, in models.TestInput) (models.TestOutput, error) {
	jc.Logger.Info().Int("id", in.ID).Msg("Test job started")

	select {
	case <-ctx.Done():
		return models.TestOutput{}, models.NewJobError(models.ErrKindCancelled, "test job cancelled", ctx.Err())
	case <-time.After(testJobDuration):
	}

	jc.Logger.Info().Int("id", in.ID).Msg("Test job finished")
	return models.TestOutput{}, nil
}
