package ai

import "context"

// Summarizer produces a natural-language summary of text following the
// given instructions. Implementations must be safe for concurrent use.
type Summarizer interface {
	// Summarize asks the model to summarize text according to instructions.
	// Errors that retrying cannot fix should be marked with Permanent.
	Summarize(ctx context.Context, text, instructions string) (string, error)
}

// SummarizeFunc adapts an ordinary function to the Summarizer interface.
type SummarizeFunc func(ctx context.Context, text, instructions string) (string, error)

// Summarize calls f(ctx, text, instructions).
func (f SummarizeFunc) Summarize(ctx context.Context, text, instructions string) (string, error) {
	return f(ctx, text, instructions)
}

// AIProvider owns a configured Summarizer and the resources behind it.
type AIProvider interface {
	// Summarizer returns the summarization service.
	// The returned Summarizer is safe for concurrent use.
	Summarizer() Summarizer

	// Close releases resources held by the provider.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
