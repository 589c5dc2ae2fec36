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

package summarit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/ai/llm"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/loader"
	"github.com/poiesic/summarit/pipeline"
	"github.com/poiesic/summarit/storage"
	"github.com/poiesic/summarit/storage/badger"
)

// Engine wires a model provider, an optional summary cache and a file loader
// into ready-to-run pipelines.
type Engine struct {
	config       core.Config
	provider     ai.AIProvider
	ownsProvider bool
	cache        storage.SummaryCache
	loader       *loader.Loader
	progress     io.Writer
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	config     *core.Config
	aiConfig   *ai.Config
	provider   ai.AIProvider
	cacheDir   string
	loaderOpts []loader.Option
	progress   io.Writer
	logger     *slog.Logger
}

// WithConfig sets the pipeline configuration. Default is core.DefaultConfig().
func WithConfig(config *core.Config) EngineOption {
	return func(o *engineOptions) {
		o.config = config
	}
}

// WithAIConfig sets the model backend configuration. Default is ai.DefaultConfig().
// The backend's model name becomes the pipeline's model identifier.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses an existing provider instead of building one from the AI
// config. The engine does not close a provider it did not create.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithCacheDir enables the persistent summary cache stored in dir.
func WithCacheDir(dir string) EngineOption {
	return func(o *engineOptions) {
		o.cacheDir = dir
	}
}

// WithLoaderOptions configures file discovery.
func WithLoaderOptions(opts ...loader.Option) EngineOption {
	return func(o *engineOptions) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

// WithProgress writes per-stage progress lines to w.
func WithProgress(w io.Writer) EngineOption {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine creates an Engine. Close must be called to release the provider
// and cache.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		config:   core.DefaultConfig(),
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.config == nil {
		options.config = core.DefaultConfig()
	}
	config := *options.config
	config.Separators = slices.Clone(options.config.Separators)
	if options.provider == nil {
		config.ModelIdentifier = options.aiConfig.Model
	}
	if err := core.ValidateConfig(&config); err != nil {
		return nil, err
	}

	ldr, err := loader.New(append([]loader.Option{loader.WithLogger(options.logger)}, options.loaderOpts...)...)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:   config,
		provider: options.provider,
		loader:   ldr,
		progress: options.progress,
		logger:   options.logger.With("component", "engine"),
	}

	if e.provider == nil {
		e.provider, err = llm.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
		e.ownsProvider = true
	}

	if options.cacheDir != "" {
		e.cache, err = badger.OpenSummaryCache(options.cacheDir)
		if err != nil {
			e.closeProvider()
			return nil, err
		}
		e.logger.Debug("opened summary cache", "path", options.cacheDir)
	}

	return e, nil
}

// Config returns a copy of the pipeline configuration.
func (e *Engine) Config() core.Config {
	return e.config
}

// Cache returns the summary cache, or nil when caching is disabled.
func (e *Engine) Cache() storage.SummaryCache {
	return e.cache
}

// Load discovers and reads the documents under root.
func (e *Engine) Load(ctx context.Context, root string) (*loader.Result, error) {
	return e.loader.Load(ctx, root)
}

// NewPipeline creates a pipeline bound to the engine's provider, cache and
// progress writer. The caller must Release it.
func (e *Engine) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	base := []pipeline.Option{pipeline.WithLogger(e.logger)}
	if e.cache != nil {
		base = append(base, pipeline.WithCache(e.cache))
	}
	if e.progress != nil {
		base = append(base, pipeline.WithProgress(e.progress))
	}
	return pipeline.NewPipeline(&e.config, e.provider.Summarizer(), append(base, opts...)...)
}

// SummarizeRepository loads every matching file under root and summarizes
// them into a single text. Files that cannot be loaded are logged and skipped.
func (e *Engine) SummarizeRepository(ctx context.Context, root string) (string, error) {
	result, err := e.Load(ctx, root)
	if err != nil {
		return "", err
	}

	p, err := e.NewPipeline()
	if err != nil {
		return "", err
	}
	defer p.Release()

	return p.Run(ctx, result.Documents)
}

// Close releases the cache and any provider the engine created.
func (e *Engine) Close() error {
	var errs []error
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("error closing summary cache", "err", err)
			errs = append(errs, err)
		}
	}
	if err := e.closeProvider(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) closeProvider() error {
	if !e.ownsProvider {
		return nil
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
