package tasks

import (
	"fmt"
	"path/filepath"
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
	ScanFiles Phase = iota
	ReadTags
	ApplyImport
)

func (p Phase) String() string {
	switch p {
	case ScanFiles:
		return "scan_files"
	case ReadTags:
		return "read_tags"
	case ApplyImport:
		return "apply_import"
	default:
		return ""
	}
}

func scanFilesUpdate(found int, root string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    found,
		Total:   found,
		Message: fmt.Sprintf("Found %d audio file(s) in %s", found, root),
	}
}

func readTagsUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadTags,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, filepath.Base(path)),
	}
}

func readTagsFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadTags,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(path), err),
	}
}

func applyImportUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyImport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d track(s) to the library...", count),
		Data:    count,
	}
}
