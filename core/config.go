package core

import (
	"slices"
	"time"
)

// Config holds the settings for one summarization run.
// It is fixed when a pipeline is created and never modified afterwards.
type Config struct {
	// MaxChunkSize is the largest chunk, in characters, the chunker emits
	// (except for indivisible units).
	MaxChunkSize int

	// ChunkOverlap is the number of characters consecutive chunks of a
	// document share. Must be smaller than MaxChunkSize.
	ChunkOverlap int

	// MaxReduceInputSize is the model input budget, in characters, for a
	// single reduce call.
	MaxReduceInputSize int

	// MaxReduceDepth caps the number of shrink passes and stalled rounds the
	// reduce stage may perform before giving up with ErrBudgetExceeded.
	MaxReduceDepth int

	// ModelIdentifier names the model used for every call.
	// Example: "codellama:7b", "qwen2.5:3b"
	ModelIdentifier string

	// Concurrency bounds the number of model calls in flight.
	Concurrency int

	// CallTimeout bounds a single model call.
	CallTimeout time.Duration

	// MaxAttempts is the number of tries for a transient model failure.
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// Separators are the chunk boundaries, coarsest first. The empty string
	// means "split between any two characters".
	Separators []string
}

// DefaultSeparators are tried in order: blank line, newline, space, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// DefaultConfig returns a Config sized for a small local model.
func DefaultConfig() *Config {
	return &Config{
		MaxChunkSize:       1000,
		ChunkOverlap:       100,
		MaxReduceInputSize: 4000,
		MaxReduceDepth:     3,
		ModelIdentifier:    "codellama:7b",
		Concurrency:        2,
		CallTimeout:        2 * time.Minute,
		MaxAttempts:        3,
		RetryDelay:         1 * time.Second,
		Separators:         slices.Clone(DefaultSeparators),
	}
}
