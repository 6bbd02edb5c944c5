// Package testutil provides in-memory fakes for handler and runtime tests.
package testutil

import (
	"context"
	"os"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/models"
)

// FakeEngine implements assess.Engine with per-method hooks. Methods
// without a hook panic so tests catch unexpected engine calls.
type FakeEngine struct {
	InitializeDataFn func(ctx context.Context, dataPath string) (*models.RegionalData, error)
	AssessRegionFn   func(ctx context.Context, params *models.AssessmentParameters) (assess.Raster, error)
	WriteCOGFn       func(ctx context.Context, raster assess.Raster, path string, opts assess.COGOptions) error
	AssessSitesFn    func(ctx context.Context, params *models.AssessmentParameters) (*geojson.FeatureCollection, error)
	FilterSitesFn    func(sites *geojson.FeatureCollection, params *models.AssessmentParameters) (*geojson.FeatureCollection, error)

	AssessRegionCalls int
	AssessSitesCalls  int
}

var _ assess.Engine = (*FakeEngine)(nil)

func (e *FakeEngine) InitializeData(ctx context.Context, dataPath string) (*models.RegionalData, error) {
	if e.InitializeDataFn == nil {
		panic("unexpected InitializeData call")
	}
	return e.InitializeDataFn(ctx, dataPath)
}

func (e *FakeEngine) AssessRegion(ctx context.Context, params *models.AssessmentParameters) (assess.Raster, error) {
	if e.AssessRegionFn == nil {
		panic("unexpected AssessRegion call")
	}
	e.AssessRegionCalls++
	return e.AssessRegionFn(ctx, params)
}

func (e *FakeEngine) WriteCOG(ctx context.Context, raster assess.Raster, path string, opts assess.COGOptions) error {
	if e.WriteCOGFn == nil {
		panic("unexpected WriteCOG call")
	}
	return e.WriteCOGFn(ctx, raster, path, opts)
}

func (e *FakeEngine) AssessSites(ctx context.Context, params *models.AssessmentParameters) (*geojson.FeatureCollection, error) {
	if e.AssessSitesFn == nil {
		panic("unexpected AssessSites call")
	}
	e.AssessSitesCalls++
	return e.AssessSitesFn(ctx, params)
}

func (e *FakeEngine) FilterSites(sites *geojson.FeatureCollection, params *models.AssessmentParameters) (*geojson.FeatureCollection, error) {
	if e.FilterSitesFn == nil {
		panic("unexpected FilterSites call")
	}
	return e.FilterSitesFn(sites, params)
}

// FakeStore records uploads in memory, keyed by target URI, capturing the
// local file's bytes at upload time.
type FakeStore struct {
	mu      sync.Mutex
	Uploads map[string][]byte
	Err     error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Uploads: make(map[string][]byte)}
}

func (s *FakeStore) Upload(ctx context.Context, localPath, targetURI string) error {
	if s.Err != nil {
		return s.Err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads[targetURI] = data
	return nil
}

// RegionalFixture is a small dataset with one region ("GBR") carrying
// depth, slope, and turbidity criteria.
func RegionalFixture() *models.RegionalData {
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
