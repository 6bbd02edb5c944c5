// -----------------------------------------------------------------------
// Suitability Assessment Handler - Site search, filter, GeoJSON upload
// -----------------------------------------------------------------------

package assessment

import (
	"context"

	"github.com/ternarybob/aestimo/internal/fingerprint"
	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/regional"
	"github.com/ternarybob/aestimo/internal/worker"
)

// SuitabilityArtifactName is the fixed artifact filename under the job's
// storage URI.
const SuitabilityArtifactName = "suitable.geojson"

// geojsonNull is written when the filtered site set is empty. Consumers
// treat a null document as "no suitable sites".
var geojsonNull = []byte("null")

// HandleSuitability computes candidate deployment sites for the merged
// parameter set plus threshold and site dimensions, filters them, and
// uploads the GeoJSON collection.
func HandleSuitability(ctx context.Context, jc *worker.Context, in models.SuitabilityAssessmentInput) (models.SuitabilityAssessmentOutput, error) {
	var out models.SuitabilityAssessmentOutput

	data, err := jc.Regional.Get(ctx)
	if err != nil {
		return out, models.NewJobError(models.ErrKindInternal, "regional data unavailable", err)
	}

	params, err := regional.BuildSuitabilityParameters(data, &in)
	if err != nil {
		return out, err
	}

	path := fingerprint.ArtifactPath(jc.CachePath, params, fingerprint.KindSuitabilityAssessment, "geojson")
	if fingerprint.Exists(path) {
		jc.Logger.Info().Str("path", path).Msg("Suitability assessment cache hit")
	} else {
		payload, err := computeSites(ctx, jc, params)
		if err != nil {
			return out, err
		}
		if err := fingerprint.WriteAtomic(path, payload); err != nil {
			return out, models.NewJobError(models.ErrKindInternal, "cache write failed", err)
		}
	}

	target := JoinStorageURI(jc.StorageURI, SuitabilityArtifactName)
	if err := jc.Store.Upload(ctx, path, target); err != nil {
		return out, err
	}

	out.GeojsonPath = SuitabilityArtifactName
	return out, nil
}

func computeSites(ctx context.Context, jc *worker.Context, params *models.AssessmentParameters) ([]byte, error) {
	jc.Logger.Info().
		Str("region", params.Region).
		Float64("threshold", *params.Threshold).
		Int("x_dist", *params.XDist).
		Int("y_dist", *params.YDist).
		Msg("Computing suitability assessment")

	sites, err := jc.Engine.AssessSites(ctx, params)
	if err != nil {
		return nil, models.NewJobError(models.ErrKindInternal, "site assessment failed", err)
	}

	filtered, err := jc.Engine.FilterSites(sites, params)
	if err != nil {
		return nil, models.NewJobError(models.ErrKindInternal, "site filtering failed", err)
	}

	if filtered == nil || len(filtered.Features) == 0 {
		jc.Logger.Info().Str("region", params.Region).Msg("No suitable sites found")
		return geojsonNull, nil
	}

	payload, err := filtered.MarshalJSON()
	if err != nil {
		return nil, models.NewJobError(models.ErrKindInternal, "GeoJSON encoding failed", err)
	}
	return payload, nil
}
