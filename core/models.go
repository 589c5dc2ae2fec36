package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier for cached model outputs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromParts hashes several fields into one ID. Parts are length-prefixed
// so ("ab", "c") and ("a", "bc") never collide.
func IDFromParts(parts ...string) ID {
	h, _ := blake2b.New(8, nil)
	var prefix [binary.MaxVarintLen64]byte
	for _, part := range parts {
		n := binary.PutUvarint(prefix[:], uint64(len(part)))
		h.Write(prefix[:n])
		h.Write([]byte(part))
	}
	return ID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// Document is the text of one source file as produced by a loader.
// Documents are read-only once loaded.
type Document struct {
	Source   string            // Path the content was loaded from
	Content  string            // Decoded text
	Metadata map[string]string // Optional metadata (e.g., "origin", "mime")
}

// Chunk is a contiguous span of text drawn from exactly one Document.
type Chunk struct {
	Ordinal int    // Position across the whole run, strictly increasing
	Source  string // Source of the owning Document
	Text    string
	Length  int // Length of Text in characters (code points)
}

// NewChunk builds a Chunk and computes its character length.
func NewChunk(ordinal int, source, text string) Chunk {
	return Chunk{
		Ordinal: ordinal,
		Source:  source,
		Text:    text,
		Length:  utf8.RuneCountInString(text),
	}
}

// PartialSummary is the model output for one chunk or one group of summaries.
type PartialSummary struct {
	Ordinal int
	Text    string
}

// Len returns the summary length in characters.
func (s PartialSummary) Len() int {
	return utf8.RuneCountInString(s.Text)
}

// CachedSummary is a model output remembered across runs.
// Key is IDFromParts(Model, instructions, input text); InputHash and
// InputLength fingerprint the same input independently so a key collision
// is detected on read.
type CachedSummary struct {
	Key         ID
	Model       string
	Summary     string
	InputHash   ID  // IDFromContent of instructions and text
	InputLength int // Input text length in characters
	CreatedAt   time.Time
}

// Fingerprint returns the InputHash and InputLength for a model call.
func Fingerprint(instructions, text string) (ID, int) {
	return IDFromContent(instructions + "\x00" + text), utf8.RuneCountInString(text)
}

// Matches reports whether the entry was produced by model for this input.
func (s *CachedSummary) Matches(model, instructions, text string) bool {
	hash, length := Fingerprint(instructions, text)
	return s.Model == model && s.InputHash == hash && s.InputLength == length
}
