package regional

import (
	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/models"
)

// BuildParameters resolves a regional assessment input against the regional
// dataset. Per criterion: a user-supplied bound overrides the regional
// default, a missing user bound inherits it. A criterion is included iff the
// region carries it; user values for a criterion the region does not carry
// are invalid input, and a criterion absent on both sides is omitted.
func BuildParameters(data *models.RegionalData, in *models.RegionalAssessmentInput) (*models.AssessmentParameters, error) {
	entry, ok := data.Region(in.Region)
	if !ok {
		return nil, models.Errorf(models.ErrKindInvalidInput, "unknown region %q", in.Region)
	}

	user := in.UserCriteria()
	criteria := make(map[models.CriterionID]models.Bounds)

	for _, id := range models.CriteriaOrder() {
		regional, hasRegional := entry.Criteria[id]
		userBounds, hasUser := user[id]

		if !hasRegional {
			if hasUser {
				return nil, models.Errorf(models.ErrKindInvalidInput,
					"criterion %q is not available in region %q", id, in.Region)
			}
			continue
		}

		merged := regional.Bounds
		if userBounds.Min != nil {
			merged.Min = *userBounds.Min
		}
		if userBounds.Max != nil {
			merged.Max = *userBounds.Max
		}
		criteria[id] = merged
	}

	params := &models.AssessmentParameters{
		Region:   in.Region,
		ReefType: in.ReefType,
		Criteria: criteria,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// BuildSuitabilityParameters resolves a suitability input: the regional
// parameter set extended with threshold and site dimensions. A missing
// threshold falls back to the engine default.
func BuildSuitabilityParameters(data *models.RegionalData, in *models.SuitabilityAssessmentInput) (*models.AssessmentParameters, error) {
	params, err := BuildParameters(data, &in.RegionalAssessmentInput)
	if err != nil {
		return nil, err
	}

	threshold := assess.DefaultSuitabilityThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	xDist, yDist := in.XDist, in.YDist

	params.Threshold = &threshold
	params.XDist = &xDist
	params.YDist = &yDist
	return params, nil
}
