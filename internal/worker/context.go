package worker

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/interfaces"
	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/regional"
)

// Context is the per-job immutable value handed to handlers. Created at
// dispatch, dropped at job completion.
type Context struct {
	Assignment *models.JobAssignment

	// StorageURI is the object-store destination prefix for this job's
	// artifacts.
	StorageURI string

	AWSRegion  string
	S3Endpoint string
	CachePath  string
	DataPath   string

	API      interfaces.APIClient
	Store    interfaces.ObjectStore
	Engine   assess.Engine
	Regional *regional.Provider

	Logger arbor.ILogger
}
