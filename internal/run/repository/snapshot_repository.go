// Package repository persists the latest snapshot of each run so status
// lookups keep working after the run goroutine is gone.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"runoj/internal/common/cache"
	"runoj/internal/run/model"
	appErr "runoj/pkg/errors"
)

const snapshotKeyPrefix = "run:snapshot:"

// SnapshotRepository stores the latest snapshot per run as a JSON blob
// with a TTL.
type SnapshotRepository struct {
	cache cache.Cache
	TTL   time.Duration
}

// NewSnapshotRepository creates a new repository.
func NewSnapshotRepository(cacheClient cache.Cache, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{cache: cacheClient, TTL: ttl}
}

// Get returns the latest stored snapshot for a run id.
func (r *SnapshotRepository) Get(ctx context.Context, runID string) (model.Snapshot, error) {
	if runID == "" {
		return model.Snapshot{}, appErr.ValidationError("run_id", "required")
	}
	if r.cache == nil {
		return model.Snapshot{}, appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	val, err := r.cache.Get(ctx, snapshotKeyPrefix+runID)
	if err != nil {
		return model.Snapshot{}, appErr.Wrapf(err, appErr.CacheError, "read snapshot failed")
	}
	if val == "" {
		return model.Snapshot{}, appErr.New(appErr.RunNotFound)
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return model.Snapshot{}, appErr.Wrapf(err, appErr.CacheError, "decode snapshot failed")
	}
	return snap, nil
}

// Save persists a snapshot, replacing any previous one for the run.
func (r *SnapshotRepository) Save(ctx context.Context, snap model.Snapshot) error {
	if snap.RunID == "" {
		return appErr.ValidationError("run_id", "required")
	}
	if r.cache == nil {
		return appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "encode snapshot failed")
	}
	if err := r.cache.Set(ctx, snapshotKeyPrefix+snap.RunID, string(data), r.TTL); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "write snapshot failed")
	}
	return nil
}
