package regional

import (
	"github.com/ternarybob/aestimo/internal/models"
)

// BuildDataSpecification projects the regional dataset into the payload
// posted to /admin/data-specification. Regions and criteria are emitted in
// canonical order; default bounds fall back to the current bounds when the
// dataset has none.
func BuildDataSpecification(data *models.RegionalData) *models.DataSpecificationPayload {
	payload := &models.DataSpecificationPayload{
		Regions: make([]models.DataSpecificationRegion, 0, len(data.Regions)),
	}

	for _, name := range data.RegionNames() {
		entry := data.Regions[name]
		region := models.DataSpecificationRegion{
			Region:   name,
			Criteria: make([]models.DataSpecificationCriterion, 0, len(entry.Criteria)),
		}

		for _, id := range models.CriteriaOrder() {
			criterion, ok := entry.Criteria[id]
			if !ok {
				continue
			}
			defaults := criterion.Bounds
			if criterion.DefaultBounds != nil {
				defaults = *criterion.DefaultBounds
			}
			region.Criteria = append(region.Criteria, models.DataSpecificationCriterion{
				ID:          id,
				Min:         criterion.Bounds.Min,
				Max:         criterion.Bounds.Max,
				DefaultMin:  defaults.Min,
				DefaultMax:  defaults.Max,
				DisplayName: criterion.DisplayName,
				Units:       criterion.Units,
				Description: criterion.Description,
			})
		}

		payload.Regions = append(payload.Regions, region)
	}

	return payload
}
