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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/summarit"
	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/loader"
	"github.com/poiesic/summarit/storage"
	"github.com/poiesic/summarit/storage/badger"
	"github.com/urfave/cli/v2"
)

const rootPrompt = "Absolute or relative path to the repo root: "

func main() {
	if err := newApp(os.Stdin, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	defaults := core.DefaultConfig()
	aiDefaults := ai.DefaultConfig()

	return &cli.App{
		Name:      "summarit",
		Usage:     "Summarize a source repository with a language model",
		ArgsUsage: "[repo root]",
		Reader:    in,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringSliceFlag{
				Name:    "pattern",
				Aliases: []string{"p"},
				Usage:   "Glob pattern of files to summarize, relative to the root (repeatable)",
				Value:   cli.NewStringSlice(loader.DefaultPatterns...),
				EnvVars: []string{"SUMMARIT_PATTERNS"},
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "File the summary is written to",
				Value:   "summary.txt",
			},
			&cli.StringFlag{
				Name:    "cache",
				Usage:   "BadgerDB directory for caching model outputs between runs",
				EnvVars: []string{"SUMMARIT_CACHE"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "Model backend (ollama, openai)",
				Value:   aiDefaults.Provider,
				EnvVars: []string{"SUMMARIT_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Model service host URL",
				Value:   aiDefaults.Host,
				EnvVars: []string{"SUMMARIT_HOST"},
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Model name",
				Value:   aiDefaults.Model,
				EnvVars: []string{"SUMMARIT_MODEL"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API token for the openai provider",
				EnvVars: []string{"SUMMARIT_TOKEN", "OPENAI_API_KEY"},
			},
			&cli.Float64Flag{
				Name:  "temperature",
				Usage: "Sampling temperature",
				Value: aiDefaults.Temperature,
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Maximum chunk size in characters",
				Value: defaults.MaxChunkSize,
			},
			&cli.IntFlag{
				Name:  "chunk-overlap",
				Usage: "Characters shared by consecutive chunks",
				Value: defaults.ChunkOverlap,
			},
			&cli.IntFlag{
				Name:  "reduce-budget",
				Usage: "Maximum characters sent to a single combine call",
				Value: defaults.MaxReduceInputSize,
			},
			&cli.IntFlag{
				Name:  "reduce-depth",
				Usage: "Maximum shrink passes and stalled rounds before giving up",
				Value: defaults.MaxReduceDepth,
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "Maximum model calls in flight",
				Value:   defaults.Concurrency,
			},
			&cli.DurationFlag{
				Name:  "call-timeout",
				Usage: "Timeout for a single model call",
				Value: defaults.CallTimeout,
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Maximum attempts for a failed model call",
				Value: defaults.MaxAttempts,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: defaults.RetryDelay,
			},
			&cli.Int64Flag{
				Name:  "max-file-size",
				Usage: "Skip files larger than this many bytes",
				Value: loader.DefaultMaxFileSize,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not print progress",
			},
		},
		Before: setupLogger,
		Action: summarizeCommand,
		Commands: []*cli.Command{
			{
				Name:   "cache-info",
				Usage:  "Print the number of cached model outputs",
				Action: cacheInfoCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cache",
						Usage:    "BadgerDB cache directory",
						EnvVars:  []string{"SUMMARIT_CACHE"},
						Required: true,
					},
				},
			},
			{
				Name:   "cache-prune",
				Usage:  "Delete cached model outputs from other models or older runs",
				Action: cachePruneCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cache",
						Usage:    "BadgerDB cache directory",
						EnvVars:  []string{"SUMMARIT_CACHE"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "keep-model",
						Usage: "Keep only entries produced by this model",
					},
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Delete entries older than this age (e.g. 720h)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to examine in each batch",
						Value: storage.DefaultBatchSize,
					},
				},
			},
		},
	}
}

func summarizeCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := c.Args().First()
	if root == "" {
		var err error
		root, err = promptForRoot(c.App.Reader, c.App.ErrWriter)
		if err != nil {
			return err
		}
	}
	root, err := resolveRoot(root)
	if err != nil {
		return err
	}

	aiConfig := buildAIConfig(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []summarit.EngineOption{
		summarit.WithConfig(buildConfig(c)),
		summarit.WithAIConfig(aiConfig),
		summarit.WithCacheDir(c.String("cache")),
		summarit.WithLoaderOptions(
			loader.WithPatterns(c.StringSlice("pattern")...),
			loader.WithMaxFileSize(c.Int64("max-file-size")),
		),
	}
	if !c.Bool("quiet") {
		opts = append(opts, summarit.WithProgress(c.App.ErrWriter))
	}

	engine, err := summarit.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer engine.Close()

	fmt.Fprintf(c.App.ErrWriter, "Root: %s\n", root)
	fmt.Fprintf(c.App.ErrWriter, "Model: %s (%s at %s)\n", aiConfig.Model, aiConfig.Provider, aiConfig.Host)
	fmt.Fprintln(c.App.ErrWriter)

	start := time.Now()
	summary, err := engine.SummarizeRepository(ctx, root)
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	outPath := c.String("out")
	if err := os.WriteFile(outPath, []byte(summary+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	slog.Info("summary written", "path", outPath, "chars", len([]rune(summary)), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func cacheInfoCommand(c *cli.Context) error {
	cache, err := badger.OpenSummaryCache(c.String("cache"))
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cache.Close()

	count, err := cache.CountSummaries(c.Context)
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%s: %d cached summaries\n", c.String("cache"), count)
	return nil
}

func cachePruneCommand(c *cli.Context) error {
	var filters []storage.KeepFunc
	if model := c.String("keep-model"); model != "" {
		filters = append(filters, storage.KeepModel(model))
	}
	if age := c.Duration("older-than"); age > 0 {
		filters = append(filters, storage.KeepNewerThan(time.Now().Add(-age)))
	}
	if len(filters) == 0 {
		return fmt.Errorf("nothing to prune: set --keep-model or --older-than")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	cache, err := badger.OpenSummaryCache(c.String("cache"))
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cache.Close()

	removed, err := storage.Prune(c.Context, cache, c.Int("batch-size"), storage.KeepAll(filters...))
	if err != nil {
		return fmt.Errorf("prune failed after removing %d entries: %w", removed, err)
	}
	fmt.Fprintf(c.App.Writer, "%s: removed %d cached summaries\n", c.String("cache"), removed)
	return nil
}

func buildConfig(c *cli.Context) *core.Config {
	config := core.DefaultConfig()
	config.MaxChunkSize = c.Int("chunk-size")
	config.ChunkOverlap = c.Int("chunk-overlap")
	config.MaxReduceInputSize = c.Int("reduce-budget")
	config.MaxReduceDepth = c.Int("reduce-depth")
	config.Concurrency = c.Int("concurrency")
	config.CallTimeout = c.Duration("call-timeout")
	config.MaxAttempts = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	config.ModelIdentifier = c.String("model")
	return config
}

func buildAIConfig(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithProvider(c.String("provider")),
		ai.WithHost(c.String("host")),
		ai.WithModel(c.String("model")),
		ai.WithTemperature(c.Float64("temperature")),
	}
	if token := c.String("token"); token != "" {
		opts = append(opts, ai.WithToken(token))
	}
	return ai.NewConfig(opts...)
}

// promptForRoot asks for the repository root on in, echoing the prompt to out.
func promptForRoot(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, rootPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read repo root: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("repo root is required")
	}
	return line, nil
}

// resolveRoot expands a leading ~, makes the path absolute and checks that it
// names a directory.
func resolveRoot(path string) (string, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repo root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repo root %s is not a directory", abs)
	}
	return abs, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
