package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rpattn/finsheet/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps runs and logs in process memory. It backs the CLI and
// servers started with the database disabled.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]domain.IngestionRun
	logs []domain.IngestionLogEntry
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[uuid.UUID]domain.IngestionRun),
		now:  time.Now,
	}
}

// Runs exposes the store as an IngestionRunRepository.
func (m *MemoryStore) Runs() IngestionRunRepository { return memoryRuns{m} }

// Logs exposes the store as an IngestionLogRepository.
func (m *MemoryStore) Logs() IngestionLogRepository { return memoryLogs{m} }

type memoryRuns struct{ m *MemoryStore }

func (r memoryRuns) Create(ctx context.Context, run domain.IngestionRun) (domain.IngestionRun, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if _, exists := r.m.runs[run.ID]; exists {
		return domain.IngestionRun{}, fmt.Errorf("ingestion run %s already exists", run.ID)
	}
	run.CreatedAt = r.m.now().UTC()
	run.Dataset = run.Dataset.Clone()
	r.m.runs[run.ID] = run
	return copyRun(run), nil
}

func (r memoryRuns) GetByID(ctx context.Context, id uuid.UUID) (domain.IngestionRun, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	run, ok := r.m.runs[id]
	if !ok {
		return domain.IngestionRun{}, fmt.Errorf("ingestion run %s: %w", id, ErrNotFound)
	}
	return copyRun(run), nil
}

func (r memoryRuns) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.IngestionRun, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []domain.IngestionRun{}
	for _, id := range ids {
		if run, ok := r.m.runs[id]; ok {
			out = append(out, copyRun(run))
		}
	}
	return out, nil
}

func (r memoryRuns) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int, offset int) ([]domain.IngestionRun, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	matched := []domain.IngestionRun{}
	for _, run := range r.m.runs {
		if run.OrganizationID == organizationID {
			matched = append(matched, run)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := paginate(len(matched), limit, offset, 50)
	out := make([]domain.IngestionRun, 0, page.end-page.start)
	for _, run := range matched[page.start:page.end] {
		out = append(out, copyRun(run))
	}
	return out, nil
}

type memoryLogs struct{ m *MemoryStore }

func (l memoryLogs) Record(ctx context.Context, entry domain.IngestionLogEntry) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = l.m.now().UTC()
	l.m.logs = append(l.m.logs, entry)
	return nil
}

func (l memoryLogs) List(ctx context.Context, organizationID uuid.UUID, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error) {
	l.m.mu.RLock()
	defer l.m.mu.RUnlock()

	matched := []domain.IngestionLogEntry{}
	for i := len(l.m.logs) - 1; i >= 0; i-- {
		entry := l.m.logs[i]
		if entry.OrganizationID != organizationID {
			continue
		}
		if fileName != "" && entry.FileName != fileName {
			continue
		}
		matched = append(matched, entry)
	}

	page := paginate(len(matched), limit, offset, 200)
	return matched[page.start:page.end], nil
}

type window struct{ start, end int }

func paginate(total, limit, offset, defaultLimit int) window {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return window{start: offset, end: end}
}

func copyRun(run domain.IngestionRun) domain.IngestionRun {
	run.Dataset = run.Dataset.Clone()
	run.Recommendations = append([]string(nil), run.Recommendations...)
	run.Warnings = append([]string(nil), run.Warnings...)
	return run
}
