// -----------------------------------------------------------------------
// Regional Assessment Handler - Cached COG computation and upload
// -----------------------------------------------------------------------

package assessment

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/fingerprint"
	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/regional"
	"github.com/ternarybob/aestimo/internal/worker"
)

// RegionalArtifactName is the fixed artifact filename under the job's
// storage URI.
const RegionalArtifactName = "regional_assessment.tiff"

// HandleRegional computes (or re-uses) the regional suitability raster for
// the merged parameter set and uploads it. A cache hit is equivalent to
// recomputation: the artifact bytes are a pure function of the fingerprint.
func HandleRegional(ctx context.Context, jc *worker.Context, in models.RegionalAssessmentInput) (models.RegionalAssessmentOutput, error) {
	var out models.RegionalAssessmentOutput

	data, err := jc.Regional.Get(ctx)
	if err != nil {
		return out, models.NewJobError(models.ErrKindInternal, "regional data unavailable", err)
	}

	params, err := regional.BuildParameters(data, &in)
	if err != nil {
		return out, err
	}

	path := fingerprint.ArtifactPath(jc.CachePath, params, fingerprint.KindRegionalAssessment, "tiff")
	if fingerprint.Exists(path) {
		jc.Logger.Info().Str("path", path).Msg("Regional assessment cache hit")
	} else {
		if err := computeRegionalArtifact(ctx, jc, params, path); err != nil {
			return out, err
		}
	}

	target := JoinStorageURI(jc.StorageURI, RegionalArtifactName)
	if err := jc.Store.Upload(ctx, path, target); err != nil {
		return out, err
	}

	out.CogPath = RegionalArtifactName
	return out, nil
}

func computeRegionalArtifact(ctx context.Context, jc *worker.Context, params *models.AssessmentParameters, path string) error {
	jc.Logger.Info().
		Str("region", params.Region).
		Int("criteria", len(params.Criteria)).
		Msg("Computing regional assessment")

	raster, err := jc.Engine.AssessRegion(ctx, params)
	if err != nil {
		return models.NewJobError(models.ErrKindInternal, "regional assessment failed", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return models.NewJobError(models.ErrKindInternal, "failed to create cache directory", err)
	}

	// Stage then rename so concurrent readers never see a partial raster.
	tmp := fingerprint.TempPath(path)
	if err := jc.Engine.WriteCOG(ctx, raster, tmp, assess.DefaultCOGOptions); err != nil {
		os.Remove(tmp)
		return models.NewJobError(models.ErrKindInternal, "COG write failed", err)
	}
	if err := fingerprint.Commit(tmp, path); err != nil {
		os.Remove(tmp)
		return models.NewJobError(models.ErrKindInternal, "cache commit failed", err)
	}
	return nil
}

// JoinStorageURI appends an artifact filename to the assignment's storage
// prefix.
func JoinStorageURI(storageURI, name string) string {
	return strings.TrimRight(storageURI, "/") + "/" + name
}
