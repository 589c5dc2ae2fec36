package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// cachingSummarizer serves calls from a SummaryCache and stores new results.
// The cache is advisory: read and write failures are logged and the call
// falls through to the model.
type cachingSummarizer struct {
	next   ai.Summarizer
	cache  storage.SummaryCache
	model  string
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ ai.Summarizer = (*cachingSummarizer)(nil)

func newCachingSummarizer(next ai.Summarizer, cache storage.SummaryCache, model string, logger *slog.Logger) *cachingSummarizer {
	return &cachingSummarizer{
		next:   next,
		cache:  cache,
		model:  model,
		logger: logger.With("component", "summary-cache"),
	}
}

// cacheKey identifies a call by model, instructions and input text.
func cacheKey(model, instructions, text string) core.ID {
	return core.IDFromParts(model, instructions, text)
}

func (c *cachingSummarizer) Summarize(ctx context.Context, text, instructions string) (string, error) {
	key := cacheKey(c.model, instructions, text)

	cached, err := c.cache.GetSummary(ctx, key)
	switch {
	case err == nil && cached.Matches(c.model, instructions, text):
		c.hits.Add(1)
		return cached.Summary, nil
	case err == nil:
		c.logger.Debug("cache entry does not match input", "key", key)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		c.logger.Warn("cache read failed", "err", err)
	}
	c.misses.Add(1)

	summary, err := c.next.Summarize(ctx, text, instructions)
	if err != nil {
		return "", err
	}

	hash, length := core.Fingerprint(instructions, text)
	entry := &core.CachedSummary{
		Key:         key,
		Model:       c.model,
		Summary:     summary,
		InputHash:   hash,
		InputLength: length,
	}
	if err := c.cache.PutSummaries(ctx, entry); err != nil {
		c.logger.Warn("cache write failed", "err", err)
	}
	return summary, nil
}

// stats returns the hit and miss counts so far.
func (c *cachingSummarizer) stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
