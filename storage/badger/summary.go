// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// SummaryRepository implements storage.SummaryCache for BadgerDB.
type SummaryRepository struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.SummaryCache = (*SummaryRepository)(nil)

// NewSummaryRepository creates a SummaryRepository on a shared backend.
// Closing the repository leaves the backend open.
func NewSummaryRepository(backend *Backend) (*SummaryRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &SummaryRepository{
		backend: backend,
	}, nil
}

// OpenSummaryCache opens (or creates) an on-disk summary cache at path.
// The returned cache owns its backend and closes it on Close.
func OpenSummaryCache(path string) (storage.SummaryCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &SummaryRepository{
		backend:     backend,
		ownsBackend: true,
	}, nil
}

// Close releases resources. Only an owned backend is closed.
func (r *SummaryRepository) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// GetSummary retrieves a cached summary by key.
func (r *SummaryRepository) GetSummary(ctx context.Context, key core.ID) (*core.CachedSummary, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var result *core.CachedSummary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSummaryKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalCachedSummary(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// PutSummaries stores summaries, replacing entries with the same key.
func (r *SummaryRepository) PutSummaries(ctx context.Context, summaries ...*core.CachedSummary) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, summary := range summaries {
			if summary.CreatedAt.IsZero() {
				summary.CreatedAt = time.Now().UTC()
			}
			if err := tx.Set(makeSummaryKey(summary.Key), storage.MarshalCachedSummary(summary)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteSummaries removes cached summaries by key.
func (r *SummaryRepository) DeleteSummaries(ctx context.Context, keys ...core.ID) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(makeSummaryKey(key)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountSummaries returns the number of cached summaries.
func (r *SummaryRepository) CountSummaries(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	return r.backend.CountPrefix([]byte(summaryPrefix))
}

// ForEachSummary walks every cached summary in storage order, handing them to fn
// in batches. Context cancellation is checked between batches.
func (r *SummaryRepository) ForEachSummary(ctx context.Context, batchSize int, fn func([]*core.CachedSummary) error) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(summaryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		batch := make([]*core.CachedSummary, 0, batchSize)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			key, err := parseSummaryKey(item.Key())
			if err != nil {
				return err
			}

			var summary *core.CachedSummary
			err = item.Value(func(val []byte) error {
				var unmarshalErr error
				summary, unmarshalErr = storage.UnmarshalCachedSummary(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if summary.Key != key {
				return fmt.Errorf("%w: record %d stored under key %d", storage.ErrSerializationFailed, summary.Key, key)
			}
			batch = append(batch, summary)
			if len(batch) < batchSize {
				continue
			}
			if err := fn(batch); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			batch = make([]*core.CachedSummary, 0, batchSize)
		}
		if len(batch) > 0 {
			return fn(batch)
		}
		return nil
	}, false)
}
