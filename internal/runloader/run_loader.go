package runloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/finsheet/internal/domain"
	"github.com/rpattn/finsheet/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

type ctxKey string

const runLoaderKey ctxKey = "runLoader"

// RunLoader batches ingestion run lookups made while serving one request.
type RunLoader struct {
	Loader *dataloader.Loader
}

// NewRunLoader builds a loader over repo.
func NewRunLoader(repo repository.IngestionRunRepository) *RunLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		ids := make([]uuid.UUID, 0, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("invalid UUID: %w", err)}
				continue
			}
			ids = append(ids, id)
		}

		runs, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			for i := range results {
				if results[i] == nil {
					results[i] = &dataloader.Result{Error: err}
				}
			}
			return results
		}

		// Map UUID -> run for ordering
		runMap := make(map[uuid.UUID]domain.IngestionRun, len(runs))
		for _, run := range runs {
			runMap[run.ID] = run
		}

		for i, k := range keys {
			if results[i] != nil {
				continue
			}
			id, _ := uuid.Parse(k.String())
			if run, ok := runMap[id]; ok {
				results[i] = &dataloader.Result{Data: run}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))
	return &RunLoader{Loader: loader}
}

// LoadMany resolves ids in order. Unknown IDs are skipped.
func (l *RunLoader) LoadMany(ctx context.Context, ids []uuid.UUID) ([]domain.IngestionRun, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	data, errs := l.Loader.LoadMany(ctx, dataloader.NewKeysFromStrings(keys))()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load ingestion runs: %w", err)
		}
	}

	runs := make([]domain.IngestionRun, 0, len(data))
	for _, item := range data {
		if run, ok := item.(domain.IngestionRun); ok {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// ContextWithLoader stores a loader on ctx.
func ContextWithLoader(ctx context.Context, l *RunLoader) context.Context {
	return context.WithValue(ctx, runLoaderKey, l)
}

// FromContext retrieves the request's loader, if any.
func FromContext(ctx context.Context) *RunLoader {
	if l, ok := ctx.Value(runLoaderKey).(*RunLoader); ok {
		return l
	}
	return nil
}
