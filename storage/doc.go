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

// Package storage provides the storage abstraction layer for Summarit.
//
// The only persistent state Summarit keeps is an optional cache of model
// outputs. SummaryCache decouples that cache from the pipeline so that the
// BadgerDB backend (storage/badger) can be swapped or left out entirely.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interface to enforce abstraction:
//
//	cache, err := badger.OpenSummaryCache(path)  // returns storage.SummaryCache
//
// # Encoding
//
// Values are encoded with mus-go primitives (varint integers, length-prefixed
// strings); see MarshalCachedSummary.
//
// # Usage
//
//	cache, err := badger.OpenSummaryCache("/path/to/cache")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// Use in tests with in-memory storage:
//
//	cache, err := badger.NewMemorySummaryCache()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
