package tasks

import "fmt"

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
	ListSubmissions Phase = iota
	AllocateCodes
	BuildDigest
)

func (p Phase) String() string {
	switch p {
	case ListSubmissions:
		return "list_submissions"
	case AllocateCodes:
		return "allocate_codes"
	case BuildDigest:
		return "build_digest"
	default:
		return ""
	}
}

func listSubmissionsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListSubmissions,
		Step:    step,
		Total:   total,
		Message: "Loading submissions...",
	}
}

func allocatingUpdate(step, total int, submissionID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AllocateCodes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Allocating codes: %s...", step, total, submissionID),
	}
}

func allocatedUpdate(step, total int, submissionID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AllocateCodes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d codes)", step, total, submissionID, count),
	}
}

func allocateFailedUpdate(step, total int, submissionID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AllocateCodes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, submissionID, err),
	}
}

func digestUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildDigest,
		Step:    step,
		Total:   total,
		Message: "Building submission digest...",
	}
}
