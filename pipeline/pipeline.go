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

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/chunking"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// progressInterval is the number of completed calls between progress lines.
const progressInterval = 1

// Pipeline turns documents into a single summary: chunk, summarize every
// chunk, then combine the partial summaries in rounds until one remains.
type Pipeline struct {
	config     core.Config
	summarizer ai.Summarizer
	splitter   *chunking.Splitter
	shrinker   *chunking.Splitter
	pool       *ants.Pool
	cache      storage.SummaryCache
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCache serves repeated model calls from cache. Cache failures are
// logged and never fail a run.
func WithCache(cache storage.SummaryCache) Option {
	return func(p *Pipeline) error {
		p.cache = cache
		return nil
	}
}

// WithProgress writes per-stage progress lines to w (typically os.Stderr).
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// NewPipeline creates a summarization pipeline. The config is validated and
// copied; later changes to it have no effect. Release must be called when
// the pipeline is no longer needed.
func NewPipeline(config *core.Config, summarizer ai.Summarizer, opts ...Option) (*Pipeline, error) {
	if err := core.ValidateConfig(config); err != nil {
		return nil, err
	}
	if summarizer == nil {
		return nil, ErrSummarizerRequired
	}

	p := &Pipeline{
		config:     *config,
		summarizer: summarizer,
		logger:     slog.Default(),
	}
	p.config.Separators = append([]string(nil), config.Separators...)

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	var err error
	p.splitter, err = chunking.NewSplitter(p.config.MaxChunkSize, p.config.ChunkOverlap,
		chunking.WithSeparators(p.config.Separators...))
	if err != nil {
		return nil, err
	}

	size, overlap := shrinkChunking(&p.config)
	p.shrinker, err = chunking.NewSplitter(size, overlap, chunking.WithSeparators(p.config.Separators...))
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.summarizer = newCachingSummarizer(p.summarizer, p.cache, p.config.ModelIdentifier, p.logger)
	}

	p.pool, err = ants.NewPool(p.config.Concurrency)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("pipeline ready",
		"chunk_size", p.splitter.MaxSize(),
		"chunk_overlap", p.splitter.Overlap(),
		"shrink_size", p.shrinker.MaxSize(),
		"shrink_overlap", p.shrinker.Overlap(),
		"concurrency", p.pool.Cap(),
		"cached", p.cache != nil)

	return p, nil
}

// shrinkChunking returns the chunk size and overlap used to re-chunk a
// summary that exceeds the reduce budget. The overlap is capped at a tenth
// of the size so that re-chunking always shortens the text in total.
func shrinkChunking(config *core.Config) (size, overlap int) {
	size = min(config.MaxChunkSize, config.MaxReduceInputSize)
	overlap = min(config.ChunkOverlap, size/10)
	return size, overlap
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() core.Config {
	cfg := p.config
	cfg.Separators = append([]string(nil), p.config.Separators...)
	return cfg
}

// Run summarizes documents and returns the final summary.
//
// It returns core.ErrEmptyInput when there is nothing to summarize, a
// *core.ModelInvocationError when a model call fails after its retries, and a
// *core.BudgetExceededError when the partial summaries cannot be reduced to
// fit the model budget within MaxReduceDepth.
func (p *Pipeline) Run(ctx context.Context, documents []core.Document) (string, error) {
	if len(documents) == 0 {
		return "", core.ErrEmptyInput
	}

	chunks := p.splitter.ChunkDocuments(documents)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: %d document(s) contain no text", core.ErrEmptyInput, len(documents))
	}

	p.logger.Info("summarizing", "documents", len(documents), "chunks", len(chunks))

	summaries, err := p.mapChunks(ctx, chunks)
	if err != nil {
		return "", err
	}

	summary, err := p.reduce(ctx, summaries)
	if err != nil {
		return "", err
	}

	p.logger.Info("summary complete", "length", len([]rune(summary)))
	if cs, ok := p.summarizer.(*cachingSummarizer); ok {
		hits, misses := cs.stats()
		p.logger.Info("summary cache", "hits", hits, "misses", misses)
	}
	return summary, nil
}

// mapChunks summarizes every chunk independently. Results are ordered by
// chunk ordinal.
func (p *Pipeline) mapChunks(ctx context.Context, chunks []core.Chunk) ([]core.PartialSummary, error) {
	texts := make([]string, len(chunks))
	ordinals := make([]int, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
		ordinals[i] = chunk.Ordinal
	}

	outputs, err := p.dispatch(ctx, core.StageMap, 0, texts, ordinals, ai.MapInstructions)
	if err != nil {
		return nil, err
	}

	summaries := make([]core.PartialSummary, len(outputs))
	for i, text := range outputs {
		summaries[i] = core.PartialSummary{Ordinal: chunks[i].Ordinal, Text: text}
	}
	return summaries, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
