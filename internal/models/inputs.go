// -----------------------------------------------------------------------
// Job Inputs/Outputs - Typed payloads per job type
// -----------------------------------------------------------------------

package models

// TestInput is the payload for TEST jobs. The id is echoed in logs only.
type TestInput struct {
	ID int `json:"id"`
}

// TestOutput is intentionally empty; TEST exists for plumbing verification.
type TestOutput struct{}

// UserBounds is a user-supplied partial override for one criterion. A nil
// field inherits the regional default during merging.
type UserBounds struct {
	Min *float64
	Max *float64
}

// Present reports whether the user supplied at least one bound.
func (u UserBounds) Present() bool {
	return u.Min != nil || u.Max != nil
}

// RegionalAssessmentInput carries the user's per-criterion bound overrides.
// Missing optional fields fall back to regional defaults; criteria the user
// names that the region does not carry are rejected as invalid input.
type RegionalAssessmentInput struct {
	Region   string `json:"region" validate:"required"`
	ReefType string `json:"reef_type,omitempty"`

	DepthMin       *float64 `json:"depth_min,omitempty"`
	DepthMax       *float64 `json:"depth_max,omitempty"`
	SlopeMin       *float64 `json:"slope_min,omitempty"`
	SlopeMax       *float64 `json:"slope_max,omitempty"`
	RugosityMin    *float64 `json:"rugosity_min,omitempty"`
	RugosityMax    *float64 `json:"rugosity_max,omitempty"`
	TurbidityMin   *float64 `json:"turbidity_min,omitempty"`
	TurbidityMax   *float64 `json:"turbidity_max,omitempty"`
	WavesHeightMin *float64 `json:"waves_height_min,omitempty"`
	WavesHeightMax *float64 `json:"waves_height_max,omitempty"`
	WavesPeriodMin *float64 `json:"waves_period_min,omitempty"`
	WavesPeriodMax *float64 `json:"waves_period_max,omitempty"`
	TideMin        *float64 `json:"tide_min,omitempty"`
	TideMax        *float64 `json:"tide_max,omitempty"`
}

// UserCriteria projects the flat field pairs into a criterion-keyed map,
// dropping criteria with neither bound supplied.
func (in *RegionalAssessmentInput) UserCriteria() map[CriterionID]UserBounds {
	all := map[CriterionID]UserBounds{
		CriterionDepth:       {Min: in.DepthMin, Max: in.DepthMax},
		CriterionSlope:       {Min: in.SlopeMin, Max: in.SlopeMax},
		CriterionRugosity:    {Min: in.RugosityMin, Max: in.RugosityMax},
		CriterionTurbidity:   {Min: in.TurbidityMin, Max: in.TurbidityMax},
		CriterionWavesHeight: {Min: in.WavesHeightMin, Max: in.WavesHeightMax},
		CriterionWavesPeriod: {Min: in.WavesPeriodMin, Max: in.WavesPeriodMax},
		CriterionTide:        {Min: in.TideMin, Max: in.TideMax},
	}
	supplied := make(map[CriterionID]UserBounds)
	for id, b := range all {
		if b.Present() {
			supplied[id] = b
		}
	}
	return supplied
}

// RegionalAssessmentOutput names the uploaded raster relative to the
// assignment's storage URI.
type RegionalAssessmentOutput struct {
	CogPath string `json:"cog_path" validate:"required"`
}

// SuitabilityAssessmentInput is a regional assessment input extended with
// site-search dimensions. Threshold falls back to the engine default when
// absent.
type SuitabilityAssessmentInput struct {
	RegionalAssessmentInput

	Threshold *float64 `json:"threshold,omitempty"`
	XDist     int      `json:"x_dist" validate:"required,gt=0"`
	YDist     int      `json:"y_dist" validate:"required,gt=0"`
}

// SuitabilityAssessmentOutput names the uploaded site collection relative
// to the assignment's storage URI.
type SuitabilityAssessmentOutput struct {
	GeojsonPath string `json:"geojson_path" validate:"required"`
}

// DataSpecificationUpdateInput triggers a data-spec push to the API.
// CacheBuster is opaque to the worker; its presence forces the API to treat
// the call as non-idempotent.
type DataSpecificationUpdateInput struct {
	CacheBuster *string `json:"cache_buster,omitempty"`
}

// DataSpecificationUpdateOutput is intentionally empty.
type DataSpecificationUpdateOutput struct{}

// DataSpecificationPayload is the projection of regional data posted to
// /admin/data-specification.
type DataSpecificationPayload struct {
	Regions []DataSpecificationRegion `json:"regions"`
}

// DataSpecificationRegion is one region's criteria projection.
type DataSpecificationRegion struct {
	Region   string                       `json:"region"`
	Criteria []DataSpecificationCriterion `json:"criteria"`
}

// DataSpecificationCriterion carries bounds, display metadata, and default
// bounds. Defaults fall back to current bounds when the dataset has none.
type DataSpecificationCriterion struct {
	ID          CriterionID `json:"id"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
	DefaultMin  float64     `json:"default_min"`
	DefaultMax  float64     `json:"default_max"`
	DisplayName string      `json:"display_name"`
	Units       string      `json:"units,omitempty"`
	Description string      `json:"description,omitempty"`
}
