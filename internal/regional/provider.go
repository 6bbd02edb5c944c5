// -----------------------------------------------------------------------
// Regional Data Provider - Lazy, memoized load of the regional dataset
// -----------------------------------------------------------------------

package regional

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/models"
)

// Provider owns the worker's regional dataset slot. The first Get pays the
// full load through the assessment engine; the worker warms it at startup so
// the first claimed job does not. Once materialized the dataset is never
// mutated, so readers need no coordination.
type Provider struct {
	engine   assess.Engine
	dataPath string
	logger   arbor.ILogger

	once sync.Once
	data *models.RegionalData
	err  error
}

// NewProvider creates a provider bound to one data directory.
func NewProvider(engine assess.Engine, dataPath string, logger arbor.ILogger) *Provider {
	return &Provider{
		engine:   engine,
		dataPath: dataPath,
		logger:   logger,
	}
}

// Get returns the regional dataset, loading it on first use.
func (p *Provider) Get(ctx context.Context) (*models.RegionalData, error) {
	p.once.Do(func() {
		started := time.Now()
		p.logger.Info().Str("data_path", p.dataPath).Msg("Loading regional data")

		p.data, p.err = p.engine.InitializeData(ctx, p.dataPath)
		if p.err != nil {
			p.logger.Error().Err(p.err).Msg("Regional data load failed")
			return
		}

		p.logger.Info().
			Int("regions", len(p.data.Regions)).
			Str("elapsed", time.Since(started).String()).
			Msg("Regional data loaded")
	})
	return p.data, p.err
}

// Warm forces the load ahead of the polling loop.
func (p *Provider) Warm(ctx context.Context) error {
	_, err := p.Get(ctx)
	return err
}
