package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/loader"
	"github.com/poiesic/summarit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findFlag[T cli.Flag](t *testing.T, flags []cli.Flag, name string) T {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %q not found", name)
	var zero T
	return zero
}

func TestAppFlags(t *testing.T) {
	app := newApp(strings.NewReader(""), &bytes.Buffer{})

	t.Run("out defaults to summary.txt", func(t *testing.T) {
		f := findFlag[*cli.StringFlag](t, app.Flags, "out")
		assert.Equal(t, "summary.txt", f.Value)
	})

	t.Run("model defaults to codellama", func(t *testing.T) {
		f := findFlag[*cli.StringFlag](t, app.Flags, "model")
		assert.Equal(t, "codellama:7b", f.Value)
		assert.Equal(t, []string{"SUMMARIT_MODEL"}, f.EnvVars)
	})

	t.Run("provider defaults to ollama", func(t *testing.T) {
		f := findFlag[*cli.StringFlag](t, app.Flags, "provider")
		assert.Equal(t, ai.ProviderOllama, f.Value)
	})

	t.Run("chunking defaults", func(t *testing.T) {
		assert.Equal(t, 1000, findFlag[*cli.IntFlag](t, app.Flags, "chunk-size").Value)
		assert.Equal(t, 100, findFlag[*cli.IntFlag](t, app.Flags, "chunk-overlap").Value)
	})

	t.Run("pattern defaults", func(t *testing.T) {
		f := findFlag[*cli.StringSliceFlag](t, app.Flags, "pattern")
		assert.Equal(t, loader.DefaultPatterns, f.Value.Value())
	})

	t.Run("token reads OPENAI_API_KEY", func(t *testing.T) {
		f := findFlag[*cli.StringFlag](t, app.Flags, "token")
		assert.Contains(t, f.EnvVars, "OPENAI_API_KEY")
	})
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			app := &cli.App{
				Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level"}},
				Action: setupLogger,
			}
			assert.NoError(t, app.Run([]string{"summarit", "--log-level", level}))
		})
	}

	t.Run("invalid level", func(t *testing.T) {
		app := newApp(strings.NewReader(""), &bytes.Buffer{})
		err := app.Run([]string{"summarit", "--log-level", "verbose", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestBuildConfig(t *testing.T) {
	app := newApp(strings.NewReader(""), &bytes.Buffer{})
	app.Before = nil
	app.Action = func(c *cli.Context) error {
		config := buildConfig(c)
		assert.Equal(t, 500, config.MaxChunkSize)
		assert.Equal(t, 50, config.ChunkOverlap)
		assert.Equal(t, 8, config.Concurrency)
		assert.Equal(t, "qwen2.5:3b", config.ModelIdentifier)

		aiConfig := buildAIConfig(c)
		assert.Equal(t, ai.ProviderOpenAI, aiConfig.Provider)
		assert.Equal(t, "qwen2.5:3b", aiConfig.Model)
		assert.Equal(t, "secret", aiConfig.Token)
		assert.Equal(t, []string{"**/*.go"}, c.StringSlice("pattern"))
		return nil
	}

	err := app.Run([]string{"summarit",
		"--chunk-size", "500",
		"--chunk-overlap", "50",
		"--concurrency", "8",
		"--model", "qwen2.5:3b",
		"--provider", "openai",
		"--token", "secret",
		"--pattern", "**/*.go",
	})
	require.NoError(t, err)
}

func TestSummarizeCommand_Errors(t *testing.T) {
	t.Run("root must be a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		app := newApp(strings.NewReader(""), &bytes.Buffer{})
		err := app.Run([]string{"summarit", file})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("unknown provider", func(t *testing.T) {
		app := newApp(strings.NewReader(""), &bytes.Buffer{})
		err := app.Run([]string{"summarit", "--provider", "telegraph", t.TempDir()})
		require.Error(t, err)
		assert.ErrorIs(t, err, ai.ErrUnknownProvider)
	})

	t.Run("prompted root", func(t *testing.T) {
		var out bytes.Buffer
		app := newApp(strings.NewReader("/definitely/not/here\n"), &out)
		err := app.Run([]string{"summarit"})
		require.Error(t, err)
		assert.Contains(t, out.String(), rootPrompt)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no matching files", func(t *testing.T) {
		app := newApp(strings.NewReader(""), &bytes.Buffer{})
		err := app.Run([]string{"summarit", "--quiet", "--out", filepath.Join(t.TempDir(), "out.txt"), t.TempDir()})
		require.Error(t, err)
		assert.ErrorIs(t, err, loader.ErrNoMatchingFiles)
	})
}

func TestPromptForRoot(t *testing.T) {
	var out bytes.Buffer
	root, err := promptForRoot(strings.NewReader("  ./repo  \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "./repo", root)
	assert.Equal(t, rootPrompt, out.String())

	root, err = promptForRoot(strings.NewReader("no-newline"), &out)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", root)

	_, err = promptForRoot(strings.NewReader("\n"), &out)
	assert.Error(t, err)

	_, err = promptForRoot(strings.NewReader(""), &out)
	assert.Error(t, err)
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = resolveRoot(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/src/project")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "src", "project"), got)

	got, err = expandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = expandHome("relative/~path")
	require.NoError(t, err)
	assert.Equal(t, "relative/~path", got)
}

func TestCacheInfoCommand(t *testing.T) {
	var stdout bytes.Buffer
	app := newApp(strings.NewReader(""), &bytes.Buffer{})
	app.Writer = &stdout

	dir := t.TempDir()
	require.NoError(t, app.Run([]string{"summarit", "cache-info", "--cache", dir}))
	assert.Contains(t, stdout.String(), "0 cached summaries")
}

func TestCachePruneCommand(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := badger.OpenSummaryCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.PutSummaries(ctx,
		&core.CachedSummary{Key: 1, Model: "codellama:7b", Summary: "a"},
		&core.CachedSummary{Key: 2, Model: "qwen2.5:3b", Summary: "b"},
	))
	require.NoError(t, cache.Close())

	t.Run("requires a filter", func(t *testing.T) {
		app := newApp(strings.NewReader(""), &bytes.Buffer{})
		err := app.Run([]string{"summarit", "cache-prune", "--cache", dir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nothing to prune")
	})

	t.Run("keeps one model", func(t *testing.T) {
		var stdout bytes.Buffer
		app := newApp(strings.NewReader(""), &bytes.Buffer{})
		app.Writer = &stdout
		require.NoError(t, app.Run([]string{"summarit", "cache-prune", "--cache", dir, "--keep-model", "codellama:7b"}))
		assert.Contains(t, stdout.String(), "removed 1 cached summaries")

		stdout.Reset()
		info := newApp(strings.NewReader(""), &bytes.Buffer{})
		info.Writer = &stdout
		require.NoError(t, info.Run([]string{"summarit", "cache-info", "--cache", dir}))
		assert.Contains(t, stdout.String(), "1 cached summaries")
	})
}
