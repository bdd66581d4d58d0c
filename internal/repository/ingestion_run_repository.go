package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpattn/finsheet/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ingestionRunRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionRunRepository wires a run store backed by pgxpool.
func NewIngestionRunRepository(pool *pgxpool.Pool) IngestionRunRepository {
	return &ingestionRunRepository{pool: pool}
}

// runDocument is the JSONB body stored alongside the indexed columns.
type runDocument struct {
	Structure       domain.WorkbookStructure `json:"structure"`
	Dataset         domain.PeriodDataset     `json:"dataset"`
	Quality         domain.QualityReport     `json:"quality"`
	Recommendations []string                 `json:"recommendations"`
	Warnings        []string                 `json:"warnings"`
}

const runColumns = `id, organization_id, file_name, period_type, actual_period_count, result, created_at`

func (r *ingestionRunRepository) Create(ctx context.Context, run domain.IngestionRun) (domain.IngestionRun, error) {
	if r.pool == nil {
		return domain.IngestionRun{}, fmt.Errorf("ingestion run repository not initialized")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	doc, err := json.Marshal(runDocument{
		Structure:       run.Structure,
		Dataset:         run.Dataset,
		Quality:         run.Quality,
		Recommendations: run.Recommendations,
		Warnings:        run.Warnings,
	})
	if err != nil {
		return domain.IngestionRun{}, fmt.Errorf("failed to encode ingestion run: %w", err)
	}

	var createdAt time.Time
	err = r.pool.QueryRow(
		ctx,
		`INSERT INTO ingestion_runs (id, organization_id, file_name, variant, period_type, declared_period_count, actual_period_count, quality_score, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		run.ID,
		run.OrganizationID,
		run.FileName,
		string(run.Structure.Variant),
		run.PeriodType,
		run.Structure.DeclaredPeriodCount,
		run.ActualDataPeriodCount,
		run.Quality.QualityScore,
		doc,
	).Scan(&createdAt)
	if err != nil {
		return domain.IngestionRun{}, fmt.Errorf("failed to create ingestion run: %w", err)
	}

	run.CreatedAt = createdAt
	return run, nil
}

func (r *ingestionRunRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.IngestionRun, error) {
	if r.pool == nil {
		return domain.IngestionRun{}, fmt.Errorf("ingestion run repository not initialized")
	}

	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM ingestion_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.IngestionRun{}, fmt.Errorf("ingestion run %s: %w", id, ErrNotFound)
		}
		return domain.IngestionRun{}, fmt.Errorf("failed to get ingestion run: %w", err)
	}
	return run, nil
}

// GetByIDs returns the runs found, in no particular order. Missing IDs are
// simply absent from the result.
func (r *ingestionRunRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.IngestionRun, error) {
	if len(ids) == 0 {
		return []domain.IngestionRun{}, nil
	}
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion run repository not initialized")
	}

	rows, err := r.pool.Query(ctx, `SELECT `+runColumns+` FROM ingestion_runs WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion runs by IDs: %w", err)
	}
	return collectRuns(rows)
}

func (r *ingestionRunRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int, offset int) ([]domain.IngestionRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion run repository not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+runColumns+`
		 FROM ingestion_runs
		 WHERE organization_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		organizationID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion runs: %w", err)
	}
	return collectRuns(rows)
}

func collectRuns(rows pgx.Rows) ([]domain.IngestionRun, error) {
	defer rows.Close()

	runs := []domain.IngestionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingestion runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (domain.IngestionRun, error) {
	var (
		run domain.IngestionRun
		raw []byte
	)
	if err := row.Scan(
		&run.ID,
		&run.OrganizationID,
		&run.FileName,
		&run.PeriodType,
		&run.ActualDataPeriodCount,
		&raw,
		&run.CreatedAt,
	); err != nil {
		return domain.IngestionRun{}, err
	}

	var doc runDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.IngestionRun{}, fmt.Errorf("failed to decode ingestion run %s: %w", run.ID, err)
	}
	run.Structure = doc.Structure
	run.Dataset = doc.Dataset
	run.Quality = doc.Quality
	run.Recommendations = doc.Recommendations
	run.Warnings = doc.Warnings
	return run, nil
}
