package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/finsheet/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ingestionLogRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionLogRepository wires a repository backed by pgxpool.
func NewIngestionLogRepository(pool *pgxpool.Pool) IngestionLogRepository {
	return &ingestionLogRepository{pool: pool}
}

func (r *ingestionLogRepository) Record(ctx context.Context, entry domain.IngestionLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("ingestion log repository not initialized")
	}

	var runID any
	if entry.RunID != nil {
		runID = *entry.RunID
	}
	var sheetName any
	if entry.SheetName != "" {
		sheetName = entry.SheetName
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO ingestion_logs (organization_id, run_id, file_name, sheet_name, severity, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.OrganizationID,
		runID,
		entry.FileName,
		sheetName,
		entry.Severity,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion log: %w", err)
	}

	return nil
}

func (r *ingestionLogRepository) List(ctx context.Context, organizationID uuid.UUID, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion log repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, organization_id, run_id, file_name, sheet_name, severity, error_message, created_at
		 FROM ingestion_logs
		 WHERE organization_id = $1
		   AND ($2::text = '' OR file_name = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		organizationID,
		fileName,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.IngestionLogEntry{}
	for rows.Next() {
		var (
			entry     domain.IngestionLogEntry
			runID     pgtype.UUID
			sheetName pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.OrganizationID,
			&runID,
			&entry.FileName,
			&sheetName,
			&entry.Severity,
			&entry.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ingestion log: %w", scanErr)
		}

		if runID.Valid {
			id := uuid.UUID(runID.Bytes)
			entry.RunID = &id
		}
		if sheetName.Valid {
			entry.SheetName = sheetName.String
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate ingestion logs: %w", rowsErr)
	}

	return logs, nil
}
