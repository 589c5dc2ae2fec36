// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Summarizer and
// ai.AIProvider for use in unit tests. The mocks allow tests to run without a
// model server and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	summarizer := mock.NewMockSummarizer()
//	summary, err := summarizer.Summarize(ctx, "some text", ai.MapInstructions)
//
//	// Custom behavior injection
//	summarizer := mock.NewMockSummarizer().
//	    WithSummarizeFunc(func(ctx context.Context, text, instructions string) (string, error) {
//	        return "", errors.New("model offline")
//	    })
//
//	// Check calls
//	count := summarizer.CallCount()
//	calls := summarizer.Calls()
//
// # Default Behavior
//
//   - MockSummarizer: Returns a short summary derived from an FNV hash of
//     the input, so equal inputs always produce equal summaries
//   - MockProvider: Wraps a MockSummarizer
//
// Unlike a real model client the mocks are cheap, but they are still safe
// for concurrent use so they can back the worker pool in pipeline tests.
package mock
