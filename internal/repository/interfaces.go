package repository

import (
	"context"
	"errors"

	"github.com/rpattn/finsheet/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("record not found")

// IngestionRunRepository persists successful ingestion runs
type IngestionRunRepository interface {
	Create(ctx context.Context, run domain.IngestionRun) (domain.IngestionRun, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.IngestionRun, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.IngestionRun, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int, offset int) ([]domain.IngestionRun, error)
}

// IngestionLogRepository records ingestion warnings and errors
type IngestionLogRepository interface {
	Record(ctx context.Context, entry domain.IngestionLogEntry) error
	List(ctx context.Context, organizationID uuid.UUID, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error)
}
