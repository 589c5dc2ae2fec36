package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/summarit/core"
)

// DefaultBatchSize is the number of cache entries handled per batch when
// walking a cache.
const DefaultBatchSize = 100

// KeepFunc reports whether a cached summary should survive a prune.
type KeepFunc func(*core.CachedSummary) bool

// KeepModel keeps only entries produced by model.
func KeepModel(model string) KeepFunc {
	return func(s *core.CachedSummary) bool {
		return s.Model == model
	}
}

// KeepNewerThan keeps entries created at or after cutoff.
func KeepNewerThan(cutoff time.Time) KeepFunc {
	return func(s *core.CachedSummary) bool {
		return !s.CreatedAt.Before(cutoff)
	}
}

// KeepAll combines filters: an entry survives only if every filter keeps it.
func KeepAll(filters ...KeepFunc) KeepFunc {
	return func(s *core.CachedSummary) bool {
		for _, keep := range filters {
			if !keep(s) {
				return false
			}
		}
		return true
	}
}

// Prune deletes every cached summary that keep rejects and returns the number
// of entries removed. Deletions are issued one batch at a time.
func Prune(ctx context.Context, cache SummaryCache, batchSize int, keep KeepFunc) (int, error) {
	removed := 0
	err := cache.ForEachSummary(ctx, batchSize, func(batch []*core.CachedSummary) error {
		var doomed []core.ID
		for _, s := range batch {
			if !keep(s) {
				doomed = append(doomed, s.Key)
			}
		}
		if len(doomed) == 0 {
			return nil
		}
		if err := cache.DeleteSummaries(ctx, doomed...); err != nil {
			return fmt.Errorf("failed to delete %d entries: %w", len(doomed), err)
		}
		removed += len(doomed)
		return nil
	})
	return removed, err
}
