package worker

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/aestimo/internal/common"
	"github.com/ternarybob/aestimo/internal/interfaces"
	"github.com/ternarybob/aestimo/internal/models"
)

// scriptedAPI implements interfaces.APIClient against in-memory behavior.
type scriptedAPI struct {
	mu         sync.Mutex
	pollFn     func(call int) (*models.JobAssignment, error)
	pollCalls  int
	submitErrs []error
	results    []models.JobResult
	signOffs   int

	// working mirrors the worker's claimed-job window so tests can assert
	// the runtime never polls while an assignment is in flight.
	working atomic.Bool
}

func (a *scriptedAPI) Login(ctx context.Context) error { return nil }

func (a *scriptedAPI) PollJob(ctx context.Context, types []models.JobType) (*models.JobAssignment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.working.Load() {
		panic("poll issued while an assignment is in flight")
	}
	a.pollCalls++
	if a.pollFn == nil {
		return nil, nil
	}
	return a.pollFn(a.pollCalls)
}

func (a *scriptedAPI) SubmitResult(ctx context.Context, assignmentID string, result models.JobResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.submitErrs) > 0 {
		err := a.submitErrs[0]
		a.submitErrs = a.submitErrs[1:]
		if err != nil {
			return err
		}
	}
	a.results = append(a.results, result)
	return nil
}

func (a *scriptedAPI) PostDataSpecification(ctx context.Context, payload *models.DataSpecificationPayload) error {
	return nil
}

func (a *scriptedAPI) SignOff(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOffs++
	return nil
}

type nopStore struct{}

func (nopStore) Upload(ctx context.Context, localPath, targetURI string) error { return nil }

func testConfig(t *testing.T, poll, idle time.Duration) *common.WorkerConfig {
	return &common.WorkerConfig{
		APIEndpoint:  "http://api.test",
		Username:     "worker",
		Password:     "secret",
		JobTypes:     []models.JobType{models.JobTypeTest},
		DataPath:     t.TempDir(),
		CachePath:    t.TempDir(),
		AWSRegion:    "ap-southeast-2",
		PollInterval: poll,
		IdleTimeout:  idle,
	}
}

func newTestWorker(t *testing.T, api *scriptedAPI, reg *Registry, poll, idle time.Duration) *Worker {
	return New(Options{
		Config:   testConfig(t, poll, idle),
		API:      api,
		Registry: reg,
		StoreFactory: func(region, endpoint string) (interfaces.ObjectStore, error) {
			return nopStore{}, nil
		},
		Logger: common.GetLogger(),
	})
}

func TestIdleTimeoutShutdown(t *testing.T) {
	api := &scriptedAPI{}
	w := newTestWorker(t, api, NewRegistry(common.GetLogger()), 100*time.Millisecond, 500*time.Millisecond)

	started := time.Now()
	err := w.Run(context.Background())
	elapsed := time.Since(started)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond)
	assert.Less(t, elapsed, 1500*time.Millisecond)
	assert.Equal(t, StateDone, w.State())
	assert.Equal(t, 1, api.signOffs)
}

func TestHappyPathJob(t *testing.T) {
	reg := NewRegistry(common.GetLogger())
	var got models.TestInput
	Register(reg, models.JobTypeTest, func(ctx context.Context, jc *Context, in models.TestInput) (models.TestOutput, error) {
		got = in
		return models.TestOutput{}, nil
	})

	api := &scriptedAPI{}
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		if call == 1 {
			return &models.JobAssignment{
				AssignmentID: "a-1",
				JobID:        "j-1",
				Type:         models.JobTypeTest,
				InputPayload: json.RawMessage(`{"id":42}`),
				StorageURI:   "s3://bucket/jobs/j-1",
			}, nil
		}
		return nil, nil
	}

	w := newTestWorker(t, api, reg, 20*time.Millisecond, 200*time.Millisecond)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, 42, got.ID)
	require.Len(t, api.results, 1)
	assert.Equal(t, models.JobStatusSucceeded, api.results[0].Status)
	assert.JSONEq(t, `{}`, string(api.results[0].Output))
}

func TestNoSecondClaimWhileWorking(t *testing.T) {
	api := &scriptedAPI{}
	reg := NewRegistry(common.GetLogger())
	Register(reg, models.JobTypeTest, func(ctx context.Context, jc *Context, in models.TestInput) (models.TestOutput, error) {
		api.working.Store(true)
		time.Sleep(150 * time.Millisecond)
		api.working.Store(false)
		return models.TestOutput{}, nil
	})

	jobsServed := 0
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		if jobsServed < 2 {
			jobsServed++
			return &models.JobAssignment{
				AssignmentID: "a-" + string(rune('0'+jobsServed)),
				JobID:        "j",
				Type:         models.JobTypeTest,
				InputPayload: json.RawMessage(`{}`),
				StorageURI:   "s3://bucket/j",
			}, nil
		}
		return nil, nil
	}

	// The scriptedAPI panics if PollJob overlaps a WORKING window.
	w := newTestWorker(t, api, reg, 10*time.Millisecond, 150*time.Millisecond)
	require.NoError(t, w.Run(context.Background()))
	require.Len(t, api.results, 2)
}

func TestUnknownJobTypeReportedAsInvalidInput(t *testing.T) {
	api := &scriptedAPI{}
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		if call == 1 {
			return &models.JobAssignment{
				AssignmentID: "a-1",
				JobID:        "j-1",
				Type:         models.JobTypeSuitabilityAssessment, // not registered
				InputPayload: json.RawMessage(`{}`),
				StorageURI:   "s3://bucket/j-1",
			}, nil
		}
		return nil, nil
	}

	w := newTestWorker(t, api, NewRegistry(common.GetLogger()), 20*time.Millisecond, 150*time.Millisecond)
	require.NoError(t, w.Run(context.Background()))

	require.Len(t, api.results, 1)
	result := api.results[0]
	assert.Equal(t, models.JobStatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, "invalid_input", result.Error.Kind)
}

func TestResultPostRetries(t *testing.T) {
	reg := NewRegistry(common.GetLogger())
	Register(reg, models.JobTypeTest, func(ctx context.Context, jc *Context, in models.TestInput) (models.TestOutput, error) {
		return models.TestOutput{}, nil
	})

	api := &scriptedAPI{
		submitErrs: []error{
			models.Errorf(models.ErrKindTransient, "gateway timeout"),
			models.Errorf(models.ErrKindTransient, "gateway timeout"),
		},
	}
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		if call == 1 {
			return &models.JobAssignment{
				AssignmentID: "a-1",
				JobID:        "j-1",
				Type:         models.JobTypeTest,
				InputPayload: json.RawMessage(`{}`),
				StorageURI:   "s3://bucket/j-1",
			}, nil
		}
		return nil, nil
	}

	w := newTestWorker(t, api, reg, 20*time.Millisecond, 150*time.Millisecond)
	require.NoError(t, w.Run(context.Background()))

	// Two failures consumed, third attempt lands.
	require.Len(t, api.results, 1)
	assert.Equal(t, models.JobStatusSucceeded, api.results[0].Status)
}

func TestAuthFailureMidRunIsFatal(t *testing.T) {
	api := &scriptedAPI{}
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		return nil, models.Errorf(models.ErrKindAuthFailure, "credentials rejected")
	}

	w := newTestWorker(t, api, NewRegistry(common.GetLogger()), 20*time.Millisecond, time.Second)
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrKindAuthFailure, models.ClassifyError(err))
}

func TestCancelledJobReportedAsCancelled(t *testing.T) {
	reg := NewRegistry(common.GetLogger())
	Register(reg, models.JobTypeTest, func(ctx context.Context, jc *Context, in models.TestInput) (models.TestOutput, error) {
		<-ctx.Done()
		return models.TestOutput{}, models.NewJobError(models.ErrKindCancelled, "interrupted", ctx.Err())
	})

	api := &scriptedAPI{}
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		return &models.JobAssignment{
			AssignmentID: "a-1",
			JobID:        "j-1",
			Type:         models.JobTypeTest,
			InputPayload: json.RawMessage(`{}`),
			StorageURI:   "s3://bucket/j-1",
		}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	w := newTestWorker(t, api, reg, 20*time.Millisecond, time.Second)
	require.NoError(t, w.Run(ctx))

	require.NotEmpty(t, api.results)
	result := api.results[0]
	assert.Equal(t, models.JobStatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, "cancelled", result.Error.Kind)
}

func TestPollErrorDoesNotResetIdleClock(t *testing.T) {
	api := &scriptedAPI{}
	api.pollFn = func(call int) (*models.JobAssignment, error) {
		return nil, models.Errorf(models.ErrKindTransient, "connection refused")
	}

	w := newTestWorker(t, api, NewRegistry(common.GetLogger()), 50*time.Millisecond, 300*time.Millisecond)

	started := time.Now()
	require.NoError(t, w.Run(context.Background()))
	elapsed := time.Since(started)

	// The API never replied, so the idle clock expires on schedule.
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 1200*time.Millisecond)
}
