package badger

import (
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// Key prefixes for different data types
const (
	summaryPrefix = "sumrec:"
)

// makeSummaryKey generates a key for a cached summary.
// Format: prefix + MUS-encoded ID
func makeSummaryKey(key core.ID) []byte {
	return append([]byte(summaryPrefix), storage.MarshalID(key)...)
}

// parseSummaryKey extracts the ID from a key built by makeSummaryKey.
func parseSummaryKey(key []byte) (core.ID, error) {
	return storage.UnmarshalID(key[len(summaryPrefix):])
}
