package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/poiesic/summarit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalID(append(MarshalID(7), 0x01))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalCachedSummary(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		summary *core.CachedSummary
	}{
		{
			name: "typical",
			summary: &core.CachedSummary{
				Key:         core.IDFromParts("codellama:7b", "summarize", "package main"),
				Model:       "codellama:7b",
				Summary:     "A Go program entry point.",
				InputHash:   core.IDFromContent("summarize\x00package main"),
				InputLength: 12,
				CreatedAt:   now,
			},
		},
		{
			name: "multibyte and long",
			summary: &core.CachedSummary{
				Key:       core.ID(7),
				Model:     "qwen2.5:3b",
				Summary:   strings.Repeat("要約 ", 500),
				CreatedAt: now,
			},
		},
		{
			name: "empty strings",
			summary: &core.CachedSummary{
				Key:       core.ID(1),
				CreatedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCachedSummary(tt.summary)

			decoded, err := UnmarshalCachedSummary(data)
			require.NoError(t, err)
			assert.Equal(t, tt.summary.Key, decoded.Key)
			assert.Equal(t, tt.summary.Model, decoded.Model)
			assert.Equal(t, tt.summary.Summary, decoded.Summary)
			assert.Equal(t, tt.summary.InputHash, decoded.InputHash)
			assert.Equal(t, tt.summary.InputLength, decoded.InputLength)
			assert.Equal(t, time.UTC, decoded.CreatedAt.Location())
			assert.True(t, tt.summary.CreatedAt.Equal(decoded.CreatedAt))
		})
	}
}

func TestUnmarshalCachedSummary_Invalid(t *testing.T) {
	valid := MarshalCachedSummary(&core.CachedSummary{
		Key:       core.ID(99),
		Model:     "m",
		Summary:   "a summary",
		CreatedAt: time.Now(),
	})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)/2]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCachedSummary(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}

	_, err := UnmarshalCachedSummary(valid[:len(valid)-1])
	assert.ErrorIs(t, err, ErrTruncatedData)
}
