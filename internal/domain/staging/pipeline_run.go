package staging

import (
	"time"

	"github.com/google/uuid"
)

// RunType identifies which pass a pipeline run performed.
type RunType string

const (
	RunTypeIngest      RunType = "INGEST"
	RunTypeProcess     RunType = "PROCESS"
	RunTypeFulfillment RunType = "FULFILLMENT"
)

// PipelineRun is the persisted record of one pipeline invocation. The
// scheduler heuristic's interval fallback and the health check both read
// this log.
type PipelineRun struct {
	ID         uuid.UUID
	Type       RunType
	StartedAt  time.Time
	FinishedAt *time.Time
	Processed  int
	Succeeded  int
	Failed     int
	Error      *string
}

// NewPipelineRun starts a run record.
func NewPipelineRun(runType RunType) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		Type:      runType,
		StartedAt: time.Now(),
	}
}

// Finish closes the run with its counters. A run is successful when it
// finished and nothing it touched failed.
func (r *PipelineRun) Finish(processed, succeeded, failed int, runErr error) {
	now := time.Now()
	r.FinishedAt = &now
	r.Processed = processed
	r.Succeeded = succeeded
	r.Failed = failed
	if runErr != nil {
		msg := runErr.Error()
		r.Error = &msg
	}
}

// Successful reports whether the run finished cleanly.
func (r *PipelineRun) Successful() bool {
	return r.FinishedAt != nil && r.Error == nil && r.Failed == 0
}
