// -----------------------------------------------------------------------
// Parameter Fingerprint - Content-addressed digest of assessment parameters
// -----------------------------------------------------------------------

package fingerprint

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/ternarybob/aestimo/internal/models"
)

// Artifact kinds used in cache file names.
const (
	KindRegionalAssessment    = "regional_assessment"
	KindSuitabilityAssessment = "suitability_assessment"
)

// Fingerprint digests a resolved parameter set into a stable decimal string.
// Components are joined with "|": region, then for suitability runs the
// threshold and site dimensions, then each present criterion's id and bounds
// in the registry's canonical sorted order. Absent criteria contribute
// nothing, so semantically equal parameter sets digest identically no matter
// how the input arrived. xxhash is stable across process restarts; it is not
// cryptographic, and does not need to be for this workload.
func Fingerprint(params *models.AssessmentParameters) string {
	parts := make([]string, 0, 4+3*len(params.Criteria))
	parts = append(parts, params.Region)

	if params.Suitability() {
		parts = append(parts,
			formatFloat(*params.Threshold),
			strconv.Itoa(*params.XDist),
			strconv.Itoa(*params.YDist),
		)
	}

	for _, id := range models.CriteriaOrder() {
		bounds, ok := params.Criteria[id]
		if !ok {
			continue
		}
		parts = append(parts, string(id), formatFloat(bounds.Min), formatFloat(bounds.Max))
	}

	sum := xxhash.Sum64String(strings.Join(parts, "|"))
	return strconv.FormatUint(sum, 10)
}

// ArtifactPath derives the cache file path for a parameter set:
// <cache_path>/<hash>_<region>_<kind>.<ext>. A file existing at this path is
// a valid previously computed artifact for the fingerprint; absence means
// not yet computed.
func ArtifactPath(cachePath string, params *models.AssessmentParameters, kind, ext string) string {
	name := Fingerprint(params) + "_" + params.Region + "_" + kind + "." + ext
	return filepath.Join(cachePath, name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
