package dither

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Run and Process after Close.
var ErrClosed = errors.New("dither: pipeline closed")

// ErrUnknownMode is returned for a Job whose Mode has no catalogue.
var ErrUnknownMode = errors.New("dither: unknown mode")

// JobError reports why a job ended early. Other jobs are unaffected.
type JobError struct {
	JobID string
	Step  string // empty when the job failed before its first step
	Err   error
}

func (e *JobError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("dither: job %s: %v", e.JobID, e.Err)
	}
	return fmt.Sprintf("dither: job %s: step %s: %v", e.JobID, e.Step, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// AssetError reports a mask that could not be obtained. Err wraps
// correlate.ErrTimeout, correlate.ErrPeerClosed or the worker's failure.
type AssetError struct {
	Key AssetKey
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("dither: asset %v: %v", e.Key, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }
