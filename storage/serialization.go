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
	"errors"
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/summarit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, n, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, decodeError("id", err)
	}
	if n != len(data) {
		return 0, fmt.Errorf("%w: id: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return id, nil
}

// MarshalCachedSummary serializes a CachedSummary to bytes.
func MarshalCachedSummary(summary *core.CachedSummary) []byte {
	buf := make([]byte, core.CachedSummaryMUS.Size(*summary))
	core.CachedSummaryMUS.Marshal(*summary, buf)
	return buf
}

// UnmarshalCachedSummary deserializes a CachedSummary from bytes.
func UnmarshalCachedSummary(data []byte) (*core.CachedSummary, error) {
	summary, n, err := core.CachedSummaryMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("cached summary", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: cached summary: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	summary.CreatedAt = summary.CreatedAt.UTC()
	return &summary, nil
}

func decodeError(what string, err error) error {
	if errors.Is(err, mus.ErrTooSmallByteSlice) {
		return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, what, ErrTruncatedData)
	}
	return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, what, err)
}
