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

package storage

import (
	"context"

	"github.com/poiesic/summarit/core"
)

// SummaryCache remembers model outputs keyed by a content hash of the call
// inputs, so that re-running over unchanged sources skips the model.
// Implementations must be thread-safe and support concurrent access.
type SummaryCache interface {
	// GetSummary retrieves the cached summary for key.
	// Returns ErrNotFound if nothing is cached under key.
	GetSummary(ctx context.Context, key core.ID) (*core.CachedSummary, error)

	// PutSummaries stores one or more summaries, replacing existing entries
	// with the same key. Sets CreatedAt if not already set.
	PutSummaries(ctx context.Context, summaries ...*core.CachedSummary) error

	// DeleteSummaries removes cached summaries by key.
	// Missing keys are ignored.
	DeleteSummaries(ctx context.Context, keys ...core.ID) error

	// CountSummaries returns the number of cached summaries.
	CountSummaries(ctx context.Context) (int, error)

	// ForEachSummary calls fn with batches of at most batchSize summaries in
	// storage order. Iteration stops at the first error from fn.
	ForEachSummary(ctx context.Context, batchSize int, fn func([]*core.CachedSummary) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
