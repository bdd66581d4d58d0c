package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rpattn/finsheet/internal/auth"
	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/repository"
	"github.com/rpattn/finsheet/internal/runloader"

	"github.com/google/uuid"
)

// Service ingests financial workbooks and persists each run.
type Service struct {
	engine  *Engine
	runRepo repository.IngestionRunRepository
	logRepo repository.IngestionLogRepository
}

// NewService creates a new ingestion service.
func NewService(
	engine *Engine,
	runRepo repository.IngestionRunRepository,
	logRepo repository.IngestionLogRepository,
) *Service {
	return &Service{
		engine:  engine,
		runRepo: runRepo,
		logRepo: logRepo,
	}
}

// Registry returns the field catalog runs are extracted against.
func (s *Service) Registry() *fieldschema.Registry {
	return s.engine.Registry()
}

// Request describes the ingestion input.
type Request struct {
	OrganizationID uuid.UUID
	FileName       string
	PeriodTypeHint string
	Data           io.Reader
}

// Ingest reads the uploaded workbook, runs the engine and stores the run.
// Terminal engine errors are logged against the file and returned as is.
func (s *Service) Ingest(ctx context.Context, req Request) (domain.IngestionRun, error) {
	if err := auth.EnforceOrganizationScope(ctx, req.OrganizationID); err != nil {
		return domain.IngestionRun{}, err
	}
	if req.Data == nil {
		return domain.IngestionRun{}, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return domain.IngestionRun{}, fmt.Errorf("failed to read upload: %w", err)
	}

	result, err := s.engine.Run(payload, req.PeriodTypeHint)
	if err != nil {
		log.Printf("[INGEST] %s rejected: %v", req.FileName, err)
		s.logIngestion(ctx, req, nil, domain.SeverityError, err.Error())
		return domain.IngestionRun{}, err
	}

	run := domain.IngestionRun{
		ID:                    uuid.New(),
		OrganizationID:        req.OrganizationID,
		FileName:              req.FileName,
		Structure:             result.Structure,
		PeriodType:            result.PeriodType,
		ActualDataPeriodCount: result.ActualDataPeriodCount,
		Dataset:               result.Dataset,
		Quality:               result.Quality,
		Recommendations:       result.Recommendations,
		Warnings:              result.Warnings,
	}

	stored, err := s.runRepo.Create(ctx, run)
	if err != nil {
		return domain.IngestionRun{}, fmt.Errorf("failed to store ingestion run: %w", err)
	}

	for _, warning := range stored.Warnings {
		s.logIngestion(ctx, req, &stored.ID, domain.SeverityWarning, warning)
	}

	log.Printf(
		"[INGEST] %s variant=%s periods=%d/%d score=%d warnings=%d",
		req.FileName,
		stored.Structure.Variant,
		stored.ActualDataPeriodCount,
		stored.Structure.DeclaredPeriodCount,
		stored.Quality.QualityScore,
		len(stored.Warnings),
	)
	return stored, nil
}

// GetRun returns one stored run, enforcing the caller's organization scope.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (domain.IngestionRun, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return domain.IngestionRun{}, err
	}
	if err := auth.EnforceOrganizationScope(ctx, run.OrganizationID); err != nil {
		return domain.IngestionRun{}, err
	}
	return run, nil
}

// GetRuns resolves several runs through the request's dataloader when one is
// attached. Runs outside the caller's scope are dropped.
func (s *Service) GetRuns(ctx context.Context, ids []uuid.UUID) ([]domain.IngestionRun, error) {
	loader := runloader.FromContext(ctx)
	if loader == nil {
		loader = runloader.NewRunLoader(s.runRepo)
	}

	runs, err := loader.LoadMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	scoped := make([]domain.IngestionRun, 0, len(runs))
	for _, run := range runs {
		if auth.EnforceOrganizationScope(ctx, run.OrganizationID) == nil {
			scoped = append(scoped, run)
		}
	}
	return scoped, nil
}

// ListRuns lists an organization's runs, newest first.
func (s *Service) ListRuns(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]domain.IngestionRun, error) {
	if err := auth.EnforceOrganizationScope(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.runRepo.ListByOrganization(ctx, organizationID, limit, offset)
}

// ListLogs lists recorded warnings and errors, optionally for one file.
func (s *Service) ListLogs(ctx context.Context, organizationID uuid.UUID, fileName string, limit, offset int) ([]domain.IngestionLogEntry, error) {
	if err := auth.EnforceOrganizationScope(ctx, organizationID); err != nil {
		return nil, err
	}
	if s.logRepo == nil {
		return []domain.IngestionLogEntry{}, nil
	}
	return s.logRepo.List(ctx, organizationID, strings.TrimSpace(fileName), limit, offset)
}

func (s *Service) logIngestion(ctx context.Context, req Request, runID *uuid.UUID, severity, message string) {
	if s.logRepo == nil || message == "" {
		return
	}
	entry := domain.IngestionLogEntry{
		OrganizationID: req.OrganizationID,
		RunID:          runID,
		FileName:       req.FileName,
		SheetName:      sheetNameFromMessage(message),
		Severity:       severity,
		ErrorMessage:   message,
	}
	if err := s.logRepo.Record(ctx, entry); err != nil {
		log.Printf("[INGEST] failed to record log for %s: %v", req.FileName, err)
	}
}

// sheetNameFromMessage pulls the first quoted sheet name out of a warning.
func sheetNameFromMessage(message string) string {
	idx := strings.Index(message, `sheet "`)
	if idx < 0 {
		return ""
	}
	rest := message[idx+len(`sheet "`):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
