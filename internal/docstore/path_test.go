package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPath(t *testing.T) {
	created := time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)

	p, err := BuildPath(7, created, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice/20240102/20240102101500-7.pdf", p)

	p, err = BuildPath(1234, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob/20231231/20231231235959-1234.pdf", p)
}

func TestBuildPath_UsesCreationLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	created := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC).In(loc)

	p, err := BuildPath(3, created, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice/20240102/20240102013000-3.pdf", p)
}

func TestBuildPath_Rejects(t *testing.T) {
	created := time.Now()
	tests := []struct {
		name string
		user string
		id   int64
	}{
		{"empty user", "", 1},
		{"dot", ".", 1},
		{"dotdot", "..", 1},
		{"slash", "a/b", 1},
		{"backslash", `a\b`, 1},
		{"control", "a\nb", 1},
		{"zero id", "alice", 0},
		{"negative id", "alice", -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPath(tt.id, created, tt.user)
			assert.Error(t, err)
		})
	}

	_, err := BuildPath(1, created, "../etc")
	assert.ErrorIs(t, err, ErrInvalidUserName)
}
