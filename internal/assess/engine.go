// -----------------------------------------------------------------------
// Assessment Engine - Boundary to the external assessment library
// -----------------------------------------------------------------------

package assess

import (
	"context"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/ternarybob/aestimo/internal/models"
)

// DefaultSuitabilityThreshold is applied when a suitability job omits the
// threshold field.
const DefaultSuitabilityThreshold = 0.95

// COGOptions controls Cloud-Optimized GeoTIFF output.
type COGOptions struct {
	TileSize      int
	WriterThreads int
}

// DefaultCOGOptions matches the production artifact layout.
var DefaultCOGOptions = COGOptions{
	TileSize:      256,
	WriterThreads: 4,
}

// Raster is an opaque handle to a computed assessment surface. It is
// produced and consumed by the same Engine; the worker never inspects it.
type Raster interface{}

// Engine is the contract of the external assessment library. The scientific
// routines are pure with respect to their parameters: equal parameters
// produce byte-equal artifacts, which is what makes the content-addressed
// cache sound.
type Engine interface {
	// InitializeData loads the regional dataset from the data directory.
	// Expensive (minutes); callers memoize the result.
	InitializeData(ctx context.Context, dataPath string) (*models.RegionalData, error)

	// AssessRegion computes the regional suitability raster.
	AssessRegion(ctx context.Context, params *models.AssessmentParameters) (Raster, error)

	// WriteCOG writes a raster as a tiled Cloud-Optimized GeoTIFF.
	WriteCOG(ctx context.Context, raster Raster, path string, opts COGOptions) error

	// AssessSites computes candidate deployment sites.
	AssessSites(ctx context.Context, params *models.AssessmentParameters) (*geojson.FeatureCollection, error)

	// FilterSites drops candidate sites below the suitability threshold.
	FilterSites(sites *geojson.FeatureCollection, params *models.AssessmentParameters) (*geojson.FeatureCollection, error)
}

var (
	engineMu      sync.RWMutex
	defaultEngine Engine
)

// Register installs the process-wide assessment engine. Deployments link
// an engine package that calls Register from init, database/sql style.
// Last registration wins.
func Register(e Engine) {
	engineMu.Lock()
	defer engineMu.Unlock()
	defaultEngine = e
}

// Default returns the registered engine.
func Default() (Engine, error) {
	engineMu.RLock()
	defer engineMu.RUnlock()
	if defaultEngine == nil {
		return nil, models.Errorf(models.ErrKindConfig, "no assessment engine registered")
	}
	return defaultEngine, nil
}
