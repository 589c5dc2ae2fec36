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

package core

import (
	"fmt"
)

// ValidateConfig checks a Config before any chunking begins.
//
// Validation rules:
//   - MaxChunkSize must be positive
//   - ChunkOverlap must be in [0, MaxChunkSize)
//   - MaxReduceInputSize must be positive
//   - MaxReduceDepth must not be negative
//   - ModelIdentifier must not be empty
//   - Concurrency, MaxAttempts and CallTimeout must be positive
//   - Separators must not be empty
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := ValidateChunking(cfg.MaxChunkSize, cfg.ChunkOverlap); err != nil {
		return err
	}
	if cfg.MaxReduceInputSize <= 0 {
		return fmt.Errorf("%w: max reduce input size must be greater than 0, got %d", ErrInvalidConfig, cfg.MaxReduceInputSize)
	}
	if cfg.MaxReduceDepth < 0 {
		return fmt.Errorf("%w: max reduce depth cannot be negative, got %d", ErrInvalidConfig, cfg.MaxReduceDepth)
	}
	if cfg.ModelIdentifier == "" {
		return fmt.Errorf("%w: model identifier is required", ErrInvalidConfig)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, cfg.Concurrency)
	}
	if cfg.CallTimeout <= 0 {
		return fmt.Errorf("%w: call timeout must be positive, got %s", ErrInvalidConfig, cfg.CallTimeout)
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, cfg.MaxAttempts)
	}
	if cfg.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative, got %s", ErrInvalidConfig, cfg.RetryDelay)
	}
	if len(cfg.Separators) == 0 {
		return fmt.Errorf("%w: at least one separator is required", ErrInvalidConfig)
	}
	return nil
}

// ValidateChunking checks a chunk size and overlap pair.
// An overlap at or above the size would never advance through the text.
func ValidateChunking(maxSize, overlap int) error {
	if maxSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be greater than 0, got %d", ErrInvalidConfig, maxSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative, got %d", ErrInvalidConfig, overlap)
	}
	if overlap >= maxSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than max chunk size %d", ErrInvalidConfig, overlap, maxSize)
	}
	return nil
}
