package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionRun is the persisted outcome of one successful ingestion.
type IngestionRun struct {
	ID                    uuid.UUID         `json:"id"`
	OrganizationID        uuid.UUID         `json:"organizationId"`
	FileName              string            `json:"fileName"`
	Structure             WorkbookStructure `json:"structure"`
	PeriodType            string            `json:"periodType"`
	ActualDataPeriodCount int               `json:"actualDataPeriodCount"`
	Dataset               PeriodDataset     `json:"dataset"`
	Quality               QualityReport     `json:"quality"`
	Recommendations       []string          `json:"recommendations"`
	Warnings              []string          `json:"warnings"`
	CreatedAt             time.Time         `json:"createdAt"`
}
