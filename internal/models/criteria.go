// -----------------------------------------------------------------------
// Criteria Model - Regional criteria bounds and assessment parameters
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"sort"
)

// CriterionID identifies one environmental criterion.
type CriterionID string

const (
	CriterionDepth       CriterionID = "depth"
	CriterionSlope       CriterionID = "slope"
	CriterionRugosity    CriterionID = "rugosity"
	CriterionTurbidity   CriterionID = "turbidity"
	CriterionWavesHeight CriterionID = "waves_height"
	CriterionWavesPeriod CriterionID = "waves_period"
	CriterionTide        CriterionID = "tide"
)

// criteriaRegistry is the closed set of criteria the worker understands.
// Fingerprinting iterates this set in sorted order so that semantically
// equal parameter sets always digest identically.
var criteriaRegistry = []CriterionID{
	CriterionDepth,
	CriterionSlope,
	CriterionRugosity,
	CriterionTurbidity,
	CriterionWavesHeight,
	CriterionWavesPeriod,
	CriterionTide,
}

// CriteriaOrder returns the registry ids in their canonical sorted order.
func CriteriaOrder() []CriterionID {
	ids := make([]CriterionID, len(criteriaRegistry))
	copy(ids, criteriaRegistry)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// KnownCriterion reports whether id is part of the registry.
func KnownCriterion(id CriterionID) bool {
	for _, known := range criteriaRegistry {
		if known == id {
			return true
		}
	}
	return false
}

// Bounds is an inclusive admissible range for one criterion.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether the range is well-formed.
func (b Bounds) Valid() bool {
	return b.Min <= b.Max
}

// BoundedCriterion is one criterion's bounds plus display metadata as held
// in the regional data. DefaultBounds, when nil, falls back to Bounds for
// data-specification payloads.
type BoundedCriterion struct {
	ID            CriterionID `json:"id"`
	Bounds        Bounds      `json:"bounds"`
	DefaultBounds *Bounds     `json:"default_bounds,omitempty"`
	DisplayName   string      `json:"display_name"`
	Units         string      `json:"units,omitempty"`
	Description   string      `json:"description,omitempty"`
}

// RegionEntry is the per-region slice of the regional dataset.
type RegionEntry struct {
	Region   string                           `json:"region"`
	Criteria map[CriterionID]BoundedCriterion `json:"criteria"`
}

// RegionalData is the read-mostly dataset of per-region criteria bounds
// loaded once per worker. Once materialized it is never mutated, so
// concurrent readers need no coordination.
type RegionalData struct {
	Regions map[string]RegionEntry `json:"regions"`
}

// Region looks up one region's entry.
func (d *RegionalData) Region(name string) (RegionEntry, bool) {
	entry, ok := d.Regions[name]
	return entry, ok
}

// RegionNames returns the region keys in sorted order.
func (d *RegionalData) RegionNames() []string {
	names := make([]string, 0, len(d.Regions))
	for name := range d.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AssessmentParameters is the fully-resolved input to an assessment run,
// derived from user input merged with regional defaults. Every included
// criterion has both bounds resolved.
type AssessmentParameters struct {
	Region   string
	ReefType string
	Criteria map[CriterionID]Bounds

	// Suitability-only extras. Threshold is resolved before fingerprinting.
	Threshold *float64
	XDist     *int
	YDist     *int
}

// Suitability reports whether the parameters carry the site-suitability
// extension fields.
func (p *AssessmentParameters) Suitability() bool {
	return p.Threshold != nil && p.XDist != nil && p.YDist != nil
}

// Validate checks the structural invariants of a resolved parameter set.
func (p *AssessmentParameters) Validate() error {
	if p.Region == "" {
		return Errorf(ErrKindInvalidInput, "assessment parameters missing region")
	}
	for id, b := range p.Criteria {
		if !KnownCriterion(id) {
			return Errorf(ErrKindInvalidInput, "unknown criterion %q", id)
		}
		if !b.Valid() {
			return Errorf(ErrKindInvalidInput, "criterion %q has min %v > max %v", id, b.Min, b.Max)
		}
	}
	return nil
}

func (p *AssessmentParameters) String() string {
	return fmt.Sprintf("AssessmentParameters{region=%s, criteria=%d, suitability=%v}", p.Region, len(p.Criteria), p.Suitability())
}
