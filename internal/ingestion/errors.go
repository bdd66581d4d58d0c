package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkbookUnreadable is returned when the payload is not a readable xlsx workbook.
	ErrWorkbookUnreadable = errors.New("workbook could not be opened")
	// ErrNoUsableWorksheet is returned when no worksheet holds any row data.
	ErrNoUsableWorksheet = errors.New("no usable worksheet found")
)

// IngestError is the single terminal error type raised by the engine. Kind
// is one of the sentinel errors above; Cause carries the underlying error
// when there is one.
type IngestError struct {
	Stage string
	Kind  error
	Cause error
}

func (e *IngestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingestion failed during %s: %v: %v", e.Stage, e.Kind, e.Cause)
	}
	return fmt.Sprintf("ingestion failed during %s: %v", e.Stage, e.Kind)
}

// Unwrap exposes both the sentinel kind and the cause to errors.Is/As.
func (e *IngestError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// KindName returns a stable identifier for the error kind.
func (e *IngestError) KindName() string {
	switch {
	case errors.Is(e.Kind, ErrWorkbookUnreadable):
		return "workbook_unreadable"
	case errors.Is(e.Kind, ErrNoUsableWorksheet):
		return "no_usable_worksheet"
	default:
		return "unknown"
	}
}

func newIngestError(stage string, kind, cause error) *IngestError {
	return &IngestError{Stage: stage, Kind: kind, Cause: cause}
}
