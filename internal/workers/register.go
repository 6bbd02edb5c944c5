package workers

import (
	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/worker"
	"github.com/ternarybob/aestimo/internal/workers/admin"
	"github.com/ternarybob/aestimo/internal/workers/assessment"
	"github.com/ternarybob/aestimo/internal/workers/testworkers"
)

// RegisterAll installs every shipped handler. Adding a job kind is one
// registration call here plus its handler package.
func RegisterAll(reg *worker.Registry) {
	worker.Register(reg, models.JobTypeTest, testworkers.HandleTest)
	worker.Register(reg, models.JobTypeRegionalAssessment, assessment.HandleRegional)
	worker.Register(reg, models.JobTypeSuitabilityAssessment, assessment.HandleSuitability)
	worker.Register(reg, models.JobTypeDataSpecificationUpdate, admin.HandleDataSpecificationUpdate)
}
