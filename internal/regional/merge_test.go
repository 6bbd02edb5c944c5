package regional

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/models"
)

func testRegionalData() *models.RegionalData {
	return &models.RegionalData{
		Regions: map[string]models.RegionEntry{
			"GBR": {
				Region: "GBR",
				Criteria: map[models.CriterionID]models.BoundedCriterion{
					models.CriterionDepth: {
						ID:          models.CriterionDepth,
						Bounds:      models.Bounds{Min: 2, Max: 40},
						DisplayName: "Depth",
						Units:       "m",
					},
					models.CriterionSlope: {
						ID:          models.CriterionSlope,
						Bounds:      models.Bounds{Min: 0, Max: 40},
						DisplayName: "Slope",
						Units:       "deg",
					},
					models.CriterionTurbidity: {
						ID:            models.CriterionTurbidity,
						Bounds:        models.Bounds{Min: 0, Max: 52},
						DefaultBounds: &models.Bounds{Min: 0, Max: 58},
						DisplayName:   "Turbidity",
					},
				},
			},
		},
	}
}

func f(v float64) *float64 { return &v }

func TestBuildParametersMergesUserOverRegional(t *testing.T) {
	in := &models.RegionalAssessmentInput{
		Region:   "GBR",
		ReefType: "slopes",
		DepthMin: f(5),
		DepthMax: f(30),
	}

	params, err := BuildParameters(testRegionalData(), in)
	require.NoError(t, err)

	assert.Equal(t, "GBR", params.Region)
	assert.Equal(t, "slopes", params.ReefType)

	// User values override, missing user values inherit.
	assert.Equal(t, models.Bounds{Min: 5, Max: 30}, params.Criteria[models.CriterionDepth])
	assert.Equal(t, models.Bounds{Min: 0, Max: 40}, params.Criteria[models.CriterionSlope])
	assert.Equal(t, models.Bounds{Min: 0, Max: 52}, params.Criteria[models.CriterionTurbidity])
}

func TestBuildParametersPartialUserBounds(t *testing.T) {
	in := &models.RegionalAssessmentInput{
		Region:   "GBR",
		DepthMin: f(10),
	}

	params, err := BuildParameters(testRegionalData(), in)
	require.NoError(t, err)
	assert.Equal(t, models.Bounds{Min: 10, Max: 40}, params.Criteria[models.CriterionDepth])
}

func TestBuildParametersOmitsCriteriaAbsentOnBothSides(t *testing.T) {
	in := &models.RegionalAssessmentInput{Region: "GBR"}

	params, err := BuildParameters(testRegionalData(), in)
	require.NoError(t, err)

	_, hasTide := params.Criteria[models.CriterionTide]
	assert.False(t, hasTide)
	assert.Len(t, params.Criteria, 3)
}

func TestBuildParametersUserOnlyCriterionIsInvalid(t *testing.T) {
	in := &models.RegionalAssessmentInput{
		Region:  "GBR",
		TideMin: f(0),
	}

	_, err := BuildParameters(testRegionalData(), in)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.ClassifyError(err))
	assert.Contains(t, err.Error(), "tide")
}

func TestBuildParametersUnknownRegion(t *testing.T) {
	in := &models.RegionalAssessmentInput{Region: "Atlantis"}

	_, err := BuildParameters(testRegionalData(), in)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.ClassifyError(err))
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestBuildSuitabilityParameters(t *testing.T) {
	in := &models.SuitabilityAssessmentInput{
		RegionalAssessmentInput: models.RegionalAssessmentInput{
			Region:   "GBR",
			DepthMin: f(5),
			DepthMax: f(30),
		},
		Threshold: f(0.8),
		XDist:     450,
		YDist:     20,
	}

	params, err := BuildSuitabilityParameters(testRegionalData(), in)
	require.NoError(t, err)
	require.True(t, params.Suitability())
	assert.Equal(t, 0.8, *params.Threshold)
	assert.Equal(t, 450, *params.XDist)
	assert.Equal(t, 20, *params.YDist)
}

func TestBuildSuitabilityParametersDefaultThreshold(t *testing.T) {
	in := &models.SuitabilityAssessmentInput{
		RegionalAssessmentInput: models.RegionalAssessmentInput{Region: "GBR"},
		XDist:                   100,
		YDist:                   100,
	}

	params, err := BuildSuitabilityParameters(testRegionalData(), in)
	require.NoError(t, err)
	assert.Equal(t, assess.DefaultSuitabilityThreshold, *params.Threshold)
}
