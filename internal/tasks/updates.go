package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCSV Phase = iota
	ParseCSV
	InsertBatch
	CountRows
)

func (p Phase) String() string {
	switch p {
	case FetchCSV:
		return "fetch_csv"
	case ParseCSV:
		return "parse_csv"
	case InsertBatch:
		return "insert_batch"
	case CountRows:
		return "count_rows"
	default:
		return ""
	}
}

func fetchCSVUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCSV,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching CSV data from %s...", source),
	}
}

func parsedCSVUpdate(parsed, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseCSV,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %d valid courses (%d skipped)", parsed, skipped),
		Data:    parsed,
	}
}

func insertingBatchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Inserting %d courses...", step, total, size),
	}
}

func insertedBatchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %d courses", step, total, size),
	}
}

func insertFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %v", step, total, err),
	}
}

func countRowsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CountRows,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Total courses in table: %d", count),
		Data:    count,
	}
}

func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
