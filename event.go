package dither

import "fmt"

// EventType distinguishes pipeline notifications.
type EventType uint8

const (
	// EventStarted announces that a step began. Only color jobs emit it.
	EventStarted EventType = iota

	// EventResult carries a preview or step result.
	EventResult

	// EventError ends a job. Err holds a *JobError.
	EventError
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventResult:
		return "result"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is one notification on a pipeline's output stream.
//
// Within a job, events arrive in catalogue order. Events of different jobs
// may interleave; consumers match them by JobID and ID.
type Event struct {
	Type  EventType
	JobID string

	// ID is the stable step identifier ("original", "bayer-2", "fsed:27").
	// Empty for job-level errors raised before any step ran.
	ID    string
	Title string

	// Image is set on EventResult, in the job's input format.
	Image Image

	// Err is set on EventError.
	Err error
}

// Preview step ids.
const (
	OriginalID  = "original"
	GrayscaleID = "grayscale"
)
