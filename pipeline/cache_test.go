package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
	"github.com/poiesic/summarit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenCache fails every operation.
type brokenCache struct{}

var errBroken = errors.New("disk on fire")

func (brokenCache) GetSummary(context.Context, core.ID) (*core.CachedSummary, error) {
	return nil, errBroken
}

func (brokenCache) PutSummaries(context.Context, ...*core.CachedSummary) error {
	return errBroken
}

func (brokenCache) DeleteSummaries(context.Context, ...core.ID) error {
	return errBroken
}

func (brokenCache) CountSummaries(context.Context) (int, error) {
	return 0, errBroken
}

func (brokenCache) ForEachSummary(context.Context, int, func([]*core.CachedSummary) error) error {
	return errBroken
}

func (brokenCache) Close() error {
	return nil
}

var _ storage.SummaryCache = brokenCache{}

func newMemoryCache(t *testing.T) storage.SummaryCache {
	t.Helper()
	cache, err := badger.NewMemorySummaryCache()
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestRun_CacheReusesResults(t *testing.T) {
	cache := newMemoryCache(t)
	summarizer := tagging()
	docs := []core.Document{
		{Source: "a", Content: "alpha"},
		{Source: "b", Content: "beta"},
	}

	first := newTestPipeline(t, testConfig(), summarizer, WithCache(cache))
	want, err := first.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 3, summarizer.CallCount())

	count, err := cache.CountSummaries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	summarizer.Reset()
	second := newTestPipeline(t, testConfig(), summarizer, WithCache(cache))
	got, err := second.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, summarizer.CallCount(), "second run is served from cache")
}

func TestRun_CacheKeyedByModel(t *testing.T) {
	cache := newMemoryCache(t)
	summarizer := tagging()
	docs := []core.Document{{Source: "a", Content: "alpha"}}

	cfg := testConfig()
	_, err := newTestPipeline(t, cfg, summarizer, WithCache(cache)).Run(context.Background(), docs)
	require.NoError(t, err)

	cfg.ModelIdentifier = "another-model"
	_, err = newTestPipeline(t, cfg, summarizer, WithCache(cache)).Run(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 2, summarizer.CallCount(), "a different model misses the cache")
}

func TestRun_CacheFailuresDoNotFailRun(t *testing.T) {
	summarizer := tagging()
	p := newTestPipeline(t, testConfig(), summarizer, WithCache(brokenCache{}))

	summary, err := p.Run(context.Background(), []core.Document{{Source: "a", Content: "alpha"}})
	require.NoError(t, err)
	assert.Equal(t, "S(alpha)", summary)
	assert.Equal(t, 1, summarizer.CallCount())
}

func TestCachingSummarizer_ErrorsNotCached(t *testing.T) {
	cache := newMemoryCache(t)
	calls := 0
	next := ai.SummarizeFunc(func(context.Context, string, string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	cs := newCachingSummarizer(next, cache, "m", slog.Default())

	_, err := cs.Summarize(context.Background(), "text", ai.MapInstructions)
	require.Error(t, err)

	out, err := cs.Summarize(context.Background(), "text", ai.MapInstructions)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	out, err = cs.Summarize(context.Background(), "text", ai.MapInstructions)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, calls)

	hits, misses := cs.stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestCacheKey(t *testing.T) {
	base := cacheKey("m", ai.MapInstructions, "text")
	assert.Equal(t, base, cacheKey("m", ai.MapInstructions, "text"))
	assert.NotEqual(t, base, cacheKey("m2", ai.MapInstructions, "text"))
	assert.NotEqual(t, base, cacheKey("m", ai.CombineInstructions, "text"))
	assert.NotEqual(t, base, cacheKey("m", ai.MapInstructions, "text2"))
}

func TestCachingSummarizer_MismatchedEntryIsMiss(t *testing.T) {
	cache := newMemoryCache(t)
	ctx := context.Background()

	key := cacheKey("m", ai.MapInstructions, "text")
	stale := &core.CachedSummary{
		Key:         key,
		Model:       "m",
		Summary:     "summary of something else",
		InputHash:   core.IDFromContent("something else"),
		InputLength: 14,
	}
	require.NoError(t, cache.PutSummaries(ctx, stale))

	calls := 0
	next := ai.SummarizeFunc(func(context.Context, string, string) (string, error) {
		calls++
		return "fresh", nil
	})
	cs := newCachingSummarizer(next, cache, "m", slog.Default())

	out, err := cs.Summarize(ctx, "text", ai.MapInstructions)
	require.NoError(t, err)
	assert.Equal(t, "fresh", out)
	assert.Equal(t, 1, calls)

	stored, err := cache.GetSummary(ctx, key)
	require.NoError(t, err)
	assert.True(t, stored.Matches("m", ai.MapInstructions, "text"), "entry is overwritten with a matching one")

	out, err = cs.Summarize(ctx, "text", ai.MapInstructions)
	require.NoError(t, err)
	assert.Equal(t, "fresh", out)
	assert.Equal(t, 1, calls)
}
