// -----------------------------------------------------------------------
// Job Model - Assignment and result structures exchanged with the job API
// -----------------------------------------------------------------------

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobType identifies the kind of work an assignment carries. Adding a new
// kind requires only a handler registration, not runtime changes.
type JobType string

const (
	JobTypeTest                    JobType = "TEST"
	JobTypeRegionalAssessment      JobType = "REGIONAL_ASSESSMENT"
	JobTypeSuitabilityAssessment   JobType = "SUITABILITY_ASSESSMENT"
	JobTypeDataSpecificationUpdate JobType = "DATA_SPECIFICATION_UPDATE"
)

// IsValid checks if the JobType is a known, valid type
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeTest, JobTypeRegionalAssessment, JobTypeSuitabilityAssessment, JobTypeDataSpecificationUpdate:
		return true
	}
	return false
}

// String returns the string representation of the JobType
func (t JobType) String() string {
	return string(t)
}

// AllJobTypes returns a slice of all valid JobType values
func AllJobTypes() []JobType {
	return []JobType{
		JobTypeTest,
		JobTypeRegionalAssessment,
		JobTypeSuitabilityAssessment,
		JobTypeDataSpecificationUpdate,
	}
}

// ParseJobTypes parses a comma-separated list of job type tags.
// Unknown tags are an error so that config drift is caught at startup.
func ParseJobTypes(csv string) ([]JobType, error) {
	parts := strings.Split(csv, ",")
	types := make([]JobType, 0, len(parts))
	seen := make(map[JobType]bool)
	for _, p := range parts {
		tag := JobType(strings.TrimSpace(p))
		if tag == "" {
			continue
		}
		if !tag.IsValid() {
			return nil, fmt.Errorf("unknown job type %q", tag)
		}
		if !seen[tag] {
			seen[tag] = true
			types = append(types, tag)
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no job types configured")
	}
	return types, nil
}

// JobTypesCSV renders a type list the way the poll endpoint expects it.
func JobTypesCSV(types []JobType) string {
	tags := make([]string, len(types))
	for i, t := range types {
		tags[i] = string(t)
	}
	return strings.Join(tags, ",")
}

// StorageScheme identifies the artifact storage backend for an assignment.
type StorageScheme string

const (
	StorageSchemeS3 StorageScheme = "S3"
)

// JobAssignment is a claimed work item. The API hands each assignment to
// exactly one worker; the worker owns it from claim until it posts a
// terminal result.
type JobAssignment struct {
	AssignmentID  string          `json:"assignment_id"`
	JobID         string          `json:"job_id"`
	Type          JobType         `json:"type"`
	InputPayload  json.RawMessage `json:"input_payload"`
	StorageURI    string          `json:"storage_uri"`
	StorageScheme StorageScheme   `json:"storage_scheme,omitempty"`
}

// JobStatus is the terminal state reported for an assignment.
type JobStatus string

const (
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobResult is the body posted to /jobs/assignments/<id>/result.
type JobResult struct {
	Status JobStatus       `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  *JobResultError `json:"error,omitempty"`
}

// JobResultError carries the failure classification back to the API.
type JobResultError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SucceededResult builds a success result from an already-serialized output.
func SucceededResult(output json.RawMessage) JobResult {
	return JobResult{Status: JobStatusSucceeded, Output: output}
}

// FailedResult builds a failure result from a classified error.
func FailedResult(kind, message string) JobResult {
	return JobResult{Status: JobStatusFailed, Error: &JobResultError{Kind: kind, Message: message}}
}
