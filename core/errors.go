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
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyInput indicates there was nothing to summarize.
	ErrEmptyInput = errors.New("no documents to summarize")

	// ErrModelInvocation indicates a model call failed after exhausting retries.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrBudgetExceeded indicates the reduce stage could not fit its inputs
	// into the model budget within the allowed depth.
	ErrBudgetExceeded = errors.New("reduce budget exceeded")
)

// Pipeline stages reported in ModelInvocationError.
const (
	StageMap    = "map"
	StageReduce = "reduce"
)

// ModelInvocationError identifies the unit whose model call failed.
type ModelInvocationError struct {
	Stage    string // StageMap or StageReduce
	Round    int    // 0 for the map stage, 1-based for reduce rounds
	Ordinal  int    // Chunk or group ordinal within the round
	Attempts int    // Number of calls made
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("%s: %s round %d unit %d after %d attempt(s): %v",
		ErrModelInvocation, e.Stage, e.Round, e.Ordinal, e.Attempts, e.Err)
}

// Unwrap exposes both ErrModelInvocation and the underlying cause.
func (e *ModelInvocationError) Unwrap() []error {
	return []error{ErrModelInvocation, e.Err}
}

// BudgetExceededError reports a summary that still did not fit after the
// reduce stage used up its depth.
type BudgetExceededError struct {
	Round  int
	Depth  int // Depth budget that was exhausted
	Length int // Length of the offending input, in characters
	Budget int // MaxReduceInputSize
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s: round %d: input of %d characters exceeds budget %d after depth %d",
		ErrBudgetExceeded, e.Round, e.Length, e.Budget, e.Depth)
}

func (e *BudgetExceededError) Unwrap() error {
	return ErrBudgetExceeded
}
