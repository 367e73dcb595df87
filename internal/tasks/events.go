package tasks

import "github.com/desertthunder/coursecat/internal/models"

// EventKind identifies what changed in a [Controller].
type EventKind int

const (
	EventBootstrapped EventKind = iota
	EventAttempted
	EventStatusChanged
	EventSelectionChanged
	EventPushed
	EventPushFailed
)

func (k EventKind) String() string {
	switch k {
	case EventBootstrapped:
		return "bootstrapped"
	case EventAttempted:
		return "attempted"
	case EventStatusChanged:
		return "status_changed"
	case EventSelectionChanged:
		return "selection_changed"
	case EventPushed:
		return "pushed"
	case EventPushFailed:
		return "push_failed"
	default:
		return ""
	}
}

// Event notifies observers that the controller state changed. Observers re-read [Controller.Snapshot].
//
// Events are dropped when the channel is full.
type Event struct {
	Kind     EventKind
	CourseID int64              // Set for status, selection and push events
	Attempt  *AttemptResult     // Set for EventAttempted
	Source   models.SourceState // Source state after the attempt
	State    State
	Err      error // Initialization or push failure
}
