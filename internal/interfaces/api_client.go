package interfaces

import (
	"context"

	"github.com/ternarybob/aestimo/internal/models"
)

// APIClient is the authenticated protocol surface to the job-dispatch API.
// Implementations attach bearer credentials and classify failures into
// models error kinds.
type APIClient interface {
	// Login authenticates and caches a bearer token.
	Login(ctx context.Context) error

	// PollJob requests a claim for any of the given types. A nil assignment
	// with nil error means the API had no job to hand out.
	PollJob(ctx context.Context, types []models.JobType) (*models.JobAssignment, error)

	// SubmitResult posts a terminal result for a claimed assignment.
	SubmitResult(ctx context.Context, assignmentID string, result models.JobResult) error

	// PostDataSpecification pushes the regional data-spec payload.
	PostDataSpecification(ctx context.Context, payload *models.DataSpecificationPayload) error

	// SignOff tells the API this worker is shutting down. Best-effort.
	SignOff(ctx context.Context) error
}
