package fingerprint

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/aestimo/internal/models"
)

func regionalParams() *models.AssessmentParameters {
	return &models.AssessmentParameters{
		Region: "GBR",
		Criteria: map[models.CriterionID]models.Bounds{
			models.CriterionDepth: {Min: 5, Max: 30},
			models.CriterionSlope: {Min: 0, Max: 40},
		},
	}
}

func suitabilityParams() *models.AssessmentParameters {
	params := regionalParams()
	threshold := 0.95
	x, y := 450, 20
	params.Threshold = &threshold
	params.XDist = &x
	params.YDist = &y
	return params
}

func TestFingerprintDeterminism(t *testing.T) {
	assert.Equal(t, Fingerprint(regionalParams()), Fingerprint(regionalParams()))
	assert.Equal(t, Fingerprint(suitabilityParams()), Fingerprint(suitabilityParams()))
}

func TestFingerprintOrderInvariance(t *testing.T) {
	// Same criteria inserted in opposite orders must digest identically.
	a := &models.AssessmentParameters{Region: "GBR", Criteria: map[models.CriterionID]models.Bounds{}}
	a.Criteria[models.CriterionDepth] = models.Bounds{Min: 5, Max: 30}
	a.Criteria[models.CriterionTurbidity] = models.Bounds{Min: 0, Max: 52}

	b := &models.AssessmentParameters{Region: "GBR", Criteria: map[models.CriterionID]models.Bounds{}}
	b.Criteria[models.CriterionTurbidity] = models.Bounds{Min: 0, Max: 52}
	b.Criteria[models.CriterionDepth] = models.Bounds{Min: 5, Max: 30}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint(regionalParams())

	changedBounds := regionalParams()
	changedBounds.Criteria[models.CriterionDepth] = models.Bounds{Min: 5, Max: 31}
	assert.NotEqual(t, base, Fingerprint(changedBounds))

	changedRegion := regionalParams()
	changedRegion.Region = "Torres Strait"
	assert.NotEqual(t, base, Fingerprint(changedRegion))

	extraCriterion := regionalParams()
	extraCriterion.Criteria[models.CriterionTide] = models.Bounds{Min: 0, Max: 2}
	assert.NotEqual(t, base, Fingerprint(extraCriterion))
}

func TestFingerprintSuitabilityExtrasChangeDigest(t *testing.T) {
	base := Fingerprint(suitabilityParams())
	assert.NotEqual(t, Fingerprint(regionalParams()), base)

	moved := suitabilityParams()
	x := 451
	moved.XDist = &x
	assert.NotEqual(t, base, Fingerprint(moved))
}

func TestFingerprintIsDecimal(t *testing.T) {
	fp := Fingerprint(regionalParams())
	_, err := strconv.ParseUint(fp, 10, 64)
	assert.NoError(t, err)
}

func TestArtifactPath(t *testing.T) {
	params := regionalParams()
	path := ArtifactPath("/var/cache/aestimo", params, KindRegionalAssessment, "tiff")

	require.Equal(t, "/var/cache/aestimo", filepath.Dir(path))
	name := filepath.Base(path)
	assert.True(t, strings.HasSuffix(name, "_GBR_regional_assessment.tiff"), name)
	assert.True(t, strings.HasPrefix(name, Fingerprint(params)+"_"), name)
}
