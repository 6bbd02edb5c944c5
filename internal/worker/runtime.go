// -----------------------------------------------------------------------
// Worker Runtime - Poll, claim, dispatch, report, idle-timeout lifecycle
// -----------------------------------------------------------------------

package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/aestimo/internal/assess"
	"github.com/ternarybob/aestimo/internal/common"
	"github.com/ternarybob/aestimo/internal/interfaces"
	"github.com/ternarybob/aestimo/internal/models"
	"github.com/ternarybob/aestimo/internal/objectstore"
	"github.com/ternarybob/aestimo/internal/regional"
)

// State is the runtime lifecycle phase, exposed for inspection.
type State string

const (
	StateStarting State = "starting"
	StatePolling  State = "polling"
	StateWorking  State = "working"
	StateStopping State = "stopping"
	StateDone     State = "done"
)

const (
	resultPostAttempts    = 3
	resultPostBackoffBase = 500 * time.Millisecond
	cancelReportTimeout   = 10 * time.Second
)

// journalRecorder is the optional local history sink.
type journalRecorder interface {
	Record(ctx context.Context, rec models.JobRecord) error
}

// Options wires the worker's collaborators.
type Options struct {
	Config       *common.WorkerConfig
	API          interfaces.APIClient
	Registry     *Registry
	Engine       assess.Engine
	Regional     *regional.Provider
	StoreFactory interfaces.ObjectStoreFactory
	Journal      journalRecorder    // optional
	ReportError  func(error)        // optional observability hook
	Logger       arbor.ILogger
}

// Worker is the runtime aggregate: one process, one job at a time. It never
// issues a second claim while an assignment is in flight, and it exits by
// itself once the API has had nothing for it for the idle timeout.
type Worker struct {
	id           string
	config       *common.WorkerConfig
	api          interfaces.APIClient
	registry     *Registry
	engine       assess.Engine
	regional     *regional.Provider
	storeFactory interfaces.ObjectStoreFactory
	journal      journalRecorder
	reportError  func(error)
	logger       arbor.ILogger

	state atomic.Value
}

// New creates a worker runtime from its collaborators.
func New(opts Options) *Worker {
	if opts.ReportError == nil {
		opts.ReportError = func(error) {}
	}
	if opts.StoreFactory == nil {
		opts.StoreFactory = func(region, endpoint string) (interfaces.ObjectStore, error) {
			return objectstore.New(objectstore.Config{
				Region:    region,
				Endpoint:  endpoint,
				AccessKey: opts.Config.S3AccessKey,
				SecretKey: opts.Config.S3SecretKey,
			}, opts.Logger)
		}
	}
	w := &Worker{
		id:           uuid.New().String(),
		config:       opts.Config,
		api:          opts.API,
		registry:     opts.Registry,
		engine:       opts.Engine,
		regional:     opts.Regional,
		storeFactory: opts.StoreFactory,
		journal:      opts.Journal,
		reportError:  opts.ReportError,
		logger:       opts.Logger,
	}
	w.state.Store(StateStarting)
	return w
}

// ID returns the worker instance id.
func (w *Worker) ID() string {
	return w.id
}

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	return w.state.Load().(State)
}

func (w *Worker) setState(s State) {
	w.state.Store(s)
}

// Start performs the STARTING phase: validate credentials and warm the
// regional dataset so the first claimed job does not pay the load cost.
// Any failure here is fatal; the caller exits non-zero.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Str("worker_id", w.id).
		Str("endpoint", w.config.APIEndpoint).
		Str("job_types", models.JobTypesCSV(w.config.JobTypes)).
		Msg("Worker starting")

	if err := w.api.Login(ctx); err != nil {
		w.reportError(err)
		return err
	}

	if w.config.NeedsRegionalData() {
		if err := w.regional.Warm(ctx); err != nil {
			w.reportError(err)
			return models.NewJobError(models.ErrKindConfig, "regional data warmup failed", err)
		}
	}

	return nil
}

// Run drives the polling loop until idle timeout or context cancellation.
// Returns nil on clean shutdown.
func (w *Worker) Run(ctx context.Context) error {
	w.setState(StatePolling)

	// Idle clock: last productive interaction with the API (startup, a
	// claim, or a result reply). NoJob replies do not reset it, otherwise a
	// reachable-but-empty queue would keep an autoscaled worker alive
	// forever.
	idle := time.Now()

	for {
		if ctx.Err() != nil {
			return w.stop()
		}

		assignment, err := w.api.PollJob(ctx, w.config.JobTypes)
		switch {
		case err != nil:
			if models.ClassifyError(err) == models.ErrKindAuthFailure {
				w.reportError(err)
				w.logger.Error().Err(err).Msg("Credentials rejected mid-run")
				w.stop()
				return err
			}
			// No reply from the API; the idle clock keeps running.
			w.logger.Warn().Err(err).Msg("Poll failed")

		case assignment != nil:
			idle = time.Now()
			w.setState(StateWorking)
			w.processAssignment(ctx, assignment)
			w.setState(StatePolling)
			// Result POST replies count as API interaction.
			idle = time.Now()
			continue

		default:
			w.logger.Debug().Msg("No job available")
		}

		if time.Since(idle) >= w.config.IdleTimeout {
			w.logger.Info().
				Str("idle_timeout", w.config.IdleTimeout.String()).
				Msg("Idle timeout reached, shutting down")
			return w.stop()
		}

		select {
		case <-ctx.Done():
			return w.stop()
		case <-time.After(w.config.PollInterval):
		}
	}
}

// stop performs the STOPPING phase: best-effort sign-off, then done.
func (w *Worker) stop() error {
	w.setState(StateStopping)

	signOffCtx, cancel := context.WithTimeout(context.Background(), cancelReportTimeout)
	defer cancel()
	if err := w.api.SignOff(signOffCtx); err != nil {
		w.logger.Debug().Err(err).Msg("Sign-off failed")
	}

	w.setState(StateDone)
	w.logger.Info().Str("worker_id", w.id).Msg("Worker stopped")
	return nil
}

// processAssignment runs one claimed job to its terminal result.
func (w *Worker) processAssignment(ctx context.Context, assignment *models.JobAssignment) {
	started := time.Now()
	jobLogger := w.logger.WithCorrelationId(assignment.AssignmentID)

	jobLogger.Info().
		Str("assignment_id", assignment.AssignmentID).
		Str("job_id", assignment.JobID).
		Str("job_type", string(assignment.Type)).
		Msg("Assignment claimed")

	result := w.execute(ctx, assignment, jobLogger)

	w.submitResult(assignment, result, jobLogger)
	w.record(assignment, result, started)
}

// execute dispatches the assignment through the registry and converts the
// outcome into a terminal result.
func (w *Worker) execute(ctx context.Context, assignment *models.JobAssignment, jobLogger arbor.ILogger) models.JobResult {
	started := time.Now()

	store, err := w.storeFactory(w.config.AWSRegion, w.config.S3Endpoint)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Object store construction failed")
		return models.FailedResult(models.ErrKindInternal.ResultStatus(), err.Error())
	}

	jc := &Context{
		Assignment: assignment,
		StorageURI: assignment.StorageURI,
		AWSRegion:  w.config.AWSRegion,
		S3Endpoint: w.config.S3Endpoint,
		CachePath:  w.config.CachePath,
		DataPath:   w.config.DataPath,
		API:        w.api,
		Store:      store,
		Engine:     w.engine,
		Regional:   w.regional,
		Logger:     jobLogger,
	}

	output, err := w.registry.Dispatch(ctx, jc, assignment.Type, assignment.InputPayload)
	if err != nil {
		kind := models.ClassifyError(err)
		if ctx.Err() != nil {
			kind = models.ErrKindCancelled
		}
		if kind == models.ErrKindUnknownJobType {
			jobLogger.Error().
				Str("job_type", string(assignment.Type)).
				Msg("Claimed a job type this worker does not handle, check JOB_TYPES")
		} else {
			jobLogger.Warn().Err(err).Str("kind", string(kind)).Msg("Assignment failed")
		}
		if kind == models.ErrKindInternal {
			w.reportError(err)
		}
		return models.FailedResult(kind.ResultStatus(), err.Error())
	}

	jobLogger.Info().
		Str("assignment_id", assignment.AssignmentID).
		Str("elapsed", time.Since(started).String()).
		Msg("Assignment succeeded")
	return models.SucceededResult(output)
}

// submitResult posts the terminal result with bounded retries. If all
// attempts fail the assignment is abandoned to the API's lease expiry.
func (w *Worker) submitResult(assignment *models.JobAssignment, result models.JobResult, jobLogger arbor.ILogger) {
	// Reporting uses its own context so a cancelled job still reports.
	postCtx, cancel := context.WithTimeout(context.Background(), cancelReportTimeout*resultPostAttempts)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= resultPostAttempts; attempt++ {
		lastErr = w.api.SubmitResult(postCtx, assignment.AssignmentID, result)
		if lastErr == nil {
			jobLogger.Info().
				Str("assignment_id", assignment.AssignmentID).
				Str("status", string(result.Status)).
				Msg("Result reported")
			return
		}
		if attempt < resultPostAttempts {
			backoff := resultPostBackoffBase << (attempt - 1)
			jobLogger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Str("backoff", backoff.String()).
				Msg("Result POST failed, retrying")
			time.Sleep(backoff)
		}
	}

	w.reportError(lastErr)
	jobLogger.Error().
		Err(lastErr).
		Str("assignment_id", assignment.AssignmentID).
		Msg("Result POST exhausted retries, abandoning assignment to lease expiry")
}

// record writes the local journal entry. Failures never affect the job.
func (w *Worker) record(assignment *models.JobAssignment, result models.JobResult, started time.Time) {
	if w.journal == nil {
		return
	}
	rec := models.JobRecord{
		AssignmentID: assignment.AssignmentID,
		JobID:        assignment.JobID,
		Type:         assignment.Type,
		Status:       result.Status,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if result.Error != nil {
		rec.ErrorKind = result.Error.Kind
		rec.ErrorMessage = result.Error.Message
	}
	recCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.journal.Record(recCtx, rec); err != nil {
		w.logger.Warn().Err(err).Msg("Journal write failed")
	}
}
