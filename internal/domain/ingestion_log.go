package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionLogEntry captures warnings and terminal errors raised while
// ingesting a workbook.
type IngestionLogEntry struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	RunID          *uuid.UUID `json:"run_id,omitempty"`
	FileName       string     `json:"file_name"`
	SheetName      string     `json:"sheet_name,omitempty"`
	Severity       string     `json:"severity"`
	ErrorMessage   string     `json:"error_message"`
	CreatedAt      time.Time  `json:"created_at"`
}

const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)
