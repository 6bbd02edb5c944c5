// -----------------------------------------------------------------------
// Handler Registry - Typed job handlers with schema validation on dispatch
// -----------------------------------------------------------------------

package worker

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/aestimo/internal/models"
)

// HandlerFunc is a typed job handler: decoded input in, typed output out.
type HandlerFunc[I any, O any] func(ctx context.Context, jc *Context, input I) (O, error)

// entry is the untyped capability record held per job type.
type entry struct {
	invoke func(ctx context.Context, jc *Context, raw json.RawMessage) (json.RawMessage, error)
}

// Registry maps job types to their handler and input/output schemas.
// Populated at startup, read-only afterwards; no locking needed.
type Registry struct {
	validate *validator.Validate
	logger   arbor.ILogger
	entries  map[models.JobType]*entry
}

// NewRegistry creates an empty handler registry.
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{
		validate: validator.New(),
		logger:   logger,
		entries:  make(map[models.JobType]*entry),
	}
}

// Register installs a typed handler for a job type. Registration is
// idempotent; the last writer wins.
func Register[I any, O any](r *Registry, jobType models.JobType, fn HandlerFunc[I, O]) {
	r.entries[jobType] = &entry{
		invoke: func(ctx context.Context, jc *Context, raw json.RawMessage) (json.RawMessage, error) {
			var input I
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &input); err != nil {
					return nil, models.NewJobError(models.ErrKindInvalidInput, "payload does not decode", err)
				}
			}
			if err := r.validate.Struct(&input); err != nil {
				return nil, models.NewJobError(models.ErrKindInvalidInput, "payload fails schema validation", err)
			}

			output, err := fn(ctx, jc, input)
			if err != nil {
				return nil, err
			}

			if err := r.validate.Struct(&output); err != nil {
				return nil, models.NewJobError(models.ErrKindInternal, "handler output fails schema validation", err)
			}
			encoded, err := json.Marshal(output)
			if err != nil {
				return nil, models.NewJobError(models.ErrKindInternal, "handler output does not serialize", err)
			}
			return encoded, nil
		},
	}
	r.logger.Debug().Str("job_type", string(jobType)).Msg("Handler registered")
}

// Registered reports whether a handler exists for the job type.
func (r *Registry) Registered(jobType models.JobType) bool {
	_, ok := r.entries[jobType]
	return ok
}

// Types returns the registered job types in sorted order.
func (r *Registry) Types() []models.JobType {
	types := make([]models.JobType, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Dispatch decodes and validates the raw payload, invokes the handler, and
// type-checks the output. An unregistered type never reaches any handler.
func (r *Registry) Dispatch(ctx context.Context, jc *Context, jobType models.JobType, raw json.RawMessage) (json.RawMessage, error) {
	e, ok := r.entries[jobType]
	if !ok {
		return nil, models.Errorf(models.ErrKindUnknownJobType, "no handler registered for job type %q", jobType)
	}
	return e.invoke(ctx, jc, raw)
}
