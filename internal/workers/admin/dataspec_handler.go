// -----------------------------------------------------------------------
// Data Specification Handler - Push regional criteria metadata to the API
// -----------------------------------------------------------------------

package admin

import (
	"context"

	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/regional"
	"github.com/ternarybob/aestimo/internal/worker"
)

// HandleDataSpecificationUpdate projects the regional dataset into the
// data-spec payload and posts it. The cache_buster input field is opaque to
// the worker; it exists so callers can force the API to treat the call as
// non-idempotent.
func HandleDataSpecificationUpdate(ctx context.Context, jc *worker.Context, in models.DataSpecificationUpdateInput) (models.DataSpecificationUpdateOutput, error) {
	var out models.DataSpecificationUpdateOutput

	data, err := jc.Regional.Get(ctx)
	if err != nil {
		return out, models.NewJobError(models.ErrKindInternal, "regional data unavailable", err)
	}

	payload := regional.BuildDataSpecification(data)

	jc.Logger.Info().
		Int("regions", len(payload.Regions)).
		Msg("Posting data specification")

	if err := jc.API.PostDataSpecification(ctx, payload); err != nil {
		return out, err
	}
	return out, nil
}
