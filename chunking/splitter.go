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

package chunking

import (
	"fmt"
	"strings"

	"github.com/poiesic/summarit/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter splits text into overlapping chunks of bounded size.
// A Splitter is immutable and safe for concurrent use.
type Splitter struct {
	maxSize    int
	overlap    int
	separators [][]rune
}

var _ textsplitter.TextSplitter = (*Splitter)(nil)

// Option configures a Splitter.
type Option func(*Splitter) error

// WithSeparators replaces the default separators. Separators are tried
// coarsest first; include "" last to allow splitting between characters.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) error {
		if len(separators) == 0 {
			return fmt.Errorf("%w: at least one separator is required", core.ErrInvalidConfig)
		}
		s.separators = toRunes(separators)
		return nil
	}
}

// NewSplitter creates a splitter producing chunks of at most maxSize
// characters with overlap characters shared between neighbours.
func NewSplitter(maxSize, overlap int, opts ...Option) (*Splitter, error) {
	if err := core.ValidateChunking(maxSize, overlap); err != nil {
		return nil, err
	}

	s := &Splitter{
		maxSize:    maxSize,
		overlap:    overlap,
		separators: toRunes(core.DefaultSeparators),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MaxSize returns the configured chunk size.
func (s *Splitter) MaxSize() int {
	return s.maxSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// SplitText implements textsplitter.TextSplitter. It never fails.
func (s *Splitter) SplitText(text string) ([]string, error) {
	return s.Split(text), nil
}

// Split returns the chunks of text in document order.
// Blank text yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	units := s.units(runes, span{0, len(runes)}, s.separators)
	return s.window(runes, units)
}

// ChunkDocuments splits each document in order and numbers the chunks
// across all of them, starting at 0.
func (s *Splitter) ChunkDocuments(docs []core.Document) []core.Chunk {
	var chunks []core.Chunk
	for _, doc := range docs {
		for _, text := range s.Split(doc.Content) {
			chunks = append(chunks, core.NewChunk(len(chunks), doc.Source, text))
		}
	}
	return chunks
}

// span is a half-open range of rune offsets.
type span struct {
	start, end int
}

func (sp span) len() int {
	return sp.end - sp.start
}

// unitBudget is the largest unit that still fits in a chunk after the
// overlap prefix.
func (s *Splitter) unitBudget() int {
	return s.maxSize - s.overlap
}

// units cuts text[sp] into pieces no larger than the unit budget. Pieces tile
// the range exactly: separators stay attached to the piece they end.
func (s *Splitter) units(text []rune, sp span, separators [][]rune) []span {
	if sp.len() <= s.unitBudget() {
		return []span{sp}
	}

	for i, sep := range separators {
		if len(sep) == 0 {
			out := make([]span, 0, sp.len())
			for p := sp.start; p < sp.end; p++ {
				out = append(out, span{p, p + 1})
			}
			return out
		}

		pieces := cutAfter(text, sp, sep)
		if len(pieces) < 2 {
			continue
		}

		var out []span
		for _, piece := range pieces {
			if piece.len() <= s.unitBudget() {
				out = append(out, piece)
				continue
			}
			out = append(out, s.units(text, piece, separators[i+1:])...)
		}
		return out
	}

	// No separator applies: the range is indivisible and kept whole.
	return []span{sp}
}

// window merges units greedily into chunks of at most maxSize characters.
// Each chunk after the first begins overlap characters before the end of
// the previous chunk, but never before the previous chunk's start. When the
// next unit plus the full overlap would not fit, the overlap shrinks to what
// fits; only a unit longer than maxSize on its own yields an oversized chunk.
func (s *Splitter) window(text []rune, units []span) []string {
	var chunks []string

	start := units[0].start
	i := 0
	for i < len(units) {
		// Always take one unit so every chunk moves forward.
		end := units[i].end
		i++
		for i < len(units) && units[i].end-start <= s.maxSize {
			end = units[i].end
			i++
		}

		chunks = append(chunks, string(text[start:end]))
		if i == len(units) {
			break
		}

		next := max(end-s.overlap, start, units[i].end-s.maxSize)
		start = min(next, end)
	}

	return chunks
}

// cutAfter splits text[sp] after every occurrence of sep.
func cutAfter(text []rune, sp span, sep []rune) []span {
	var pieces []span
	from := sp.start
	for from < sp.end {
		idx := indexRunes(text, from, sp.end, sep)
		if idx < 0 {
			break
		}
		cut := idx + len(sep)
		pieces = append(pieces, span{from, cut})
		from = cut
	}
	if from < sp.end {
		pieces = append(pieces, span{from, sp.end})
	}
	return pieces
}

// indexRunes returns the offset of the first occurrence of sep in
// text[from:to], or -1.
func indexRunes(text []rune, from, to int, sep []rune) int {
	last := to - len(sep)
outer:
	for i := from; i <= last; i++ {
		for j, r := range sep {
			if text[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

func toRunes(separators []string) [][]rune {
	out := make([][]rune, len(separators))
	for i, sep := range separators {
		out[i] = []rune(sep)
	}
	return out
}
