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

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/poiesic/summarit/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// DefaultPatterns matches the source and documentation files summarized when
// no patterns are given.
var DefaultPatterns = []string{"**/*.{py,md,txt,ini,toml}"}

// DefaultMaxFileSize is the largest file loaded by default (4 MiB).
const DefaultMaxFileSize int64 = 4 << 20

// Metadata keys set on every loaded document.
const (
	MetaPath = "path"
	MetaMIME = "mime"
	MetaSize = "size"
)

// Loader finds and reads text files under a root directory.
type Loader struct {
	patterns    []string
	maxFileSize int64
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPatterns replaces the default patterns. Patterns are doublestar globs
// relative to the root, using forward slashes.
func WithPatterns(patterns ...string) Option {
	return func(l *Loader) error {
		if len(patterns) == 0 {
			return fmt.Errorf("%w: at least one pattern is required", ErrInvalidPattern)
		}
		for _, p := range patterns {
			if strings.TrimSpace(p) == "" || !doublestar.ValidatePattern(p) {
				return fmt.Errorf("%w: %q", ErrInvalidPattern, p)
			}
		}
		l.patterns = slices.Clone(patterns)
		return nil
	}
}

// WithMaxFileSize sets the size limit in bytes. Files above it are skipped.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) error {
		if n <= 0 {
			return fmt.Errorf("max file size must be positive, got %d", n)
		}
		l.maxFileSize = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		l.logger = logger
		return nil
	}
}

// New creates a Loader.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		patterns:    slices.Clone(DefaultPatterns),
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "loader")
	return l, nil
}

// Patterns returns a copy of the configured patterns.
func (l *Loader) Patterns() []string {
	return slices.Clone(l.patterns)
}

// Result is the outcome of a load.
type Result struct {
	// Documents in discovery order: pattern order, then path order.
	Documents []core.Document
	// Skipped lists files that matched but could not be loaded.
	Skipped []*LoadError
}

// Err joins the skipped-file errors, or returns nil when none were skipped.
func (r *Result) Err() error {
	errs := make([]error, len(r.Skipped))
	for i, le := range r.Skipped {
		errs[i] = le
	}
	return errors.Join(errs...)
}

// Load discovers and reads every matching file under root. Files that fail to
// load are logged, recorded in Result.Skipped and otherwise ignored.
func (l *Loader) Load(ctx context.Context, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	paths, err := l.discover(absRoot)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w under %s (patterns: %s)", ErrNoMatchingFiles, absRoot, strings.Join(l.patterns, ", "))
	}
	l.logger.Debug("discovered files", "root", absRoot, "count", len(paths))

	result := &Result{Documents: make([]core.Document, 0, len(paths))}
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := l.loadFile(ctx, absRoot, rel)
		if err != nil {
			le := &LoadError{Path: rel, Err: err}
			result.Skipped = append(result.Skipped, le)
			l.logger.Warn("skipping file", "path", rel, "err", err)
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	l.logger.Info("loaded documents", "loaded", len(result.Documents), "skipped", len(result.Skipped))
	return result, nil
}

// discover expands every pattern against root and returns the unique
// slash-separated relative paths, sorted within each pattern.
func (l *Loader) discover(root string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range l.patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	return paths, nil
}

func (l *Loader) loadFile(ctx context.Context, root, rel string) (core.Document, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	inside, err := pathInside(root, path)
	if err != nil {
		return core.Document{}, err
	}
	if !inside {
		return core.Document{}, ErrOutsideRoot
	}

	info, err := os.Stat(path)
	if err != nil {
		return core.Document{}, err
	}
	if info.Size() > l.maxFileSize {
		return core.Document{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), l.maxFileSize)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("detect content type: %w", err)
	}
	if !isText(mtype) {
		return core.Document{}, fmt.Errorf("%w: %s", ErrBinaryFile, mtype.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return core.Document{}, err
	}
	defer f.Close()

	docs, err := documentloaders.NewText(io.LimitReader(f, l.maxFileSize+1)).Load(ctx)
	if err != nil {
		return core.Document{}, fmt.Errorf("read: %w", err)
	}
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.PageContent)
	}
	content := b.String()
	if int64(len(content)) > l.maxFileSize {
		return core.Document{}, fmt.Errorf("%w: grew past %d bytes while reading", ErrFileTooLarge, l.maxFileSize)
	}
	if !utf8.ValidString(content) {
		return core.Document{}, ErrInvalidEncoding
	}

	return core.Document{
		Source:  rel,
		Content: content,
		Metadata: map[string]string{
			MetaPath: path,
			MetaMIME: mtype.String(),
			MetaSize: strconv.Itoa(len(content)),
		},
	}, nil
}

// isText reports whether m is text/plain or one of its descendants
// (source code, markdown, json and friends).
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// pathInside reports whether target, after resolving symlinks, lies within root.
func pathInside(root, target string) (bool, error) {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false, err
	}
	resolvedTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(resolvedRoot, resolvedTarget)
	if err != nil {
		return false, err
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}
