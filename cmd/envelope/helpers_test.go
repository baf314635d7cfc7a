package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "42.50", want: "42.5"},
		{in: " 1,200 ", want: "1200"},
		{in: "", want: "0"},
		{in: "twelve", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	got, err := parseDate("2025-02-14", loc, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, loc), got)

	got, err = parseDate("yesterday", loc, now)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Day())

	got, err = parseDate("", loc, now)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDate("14/02/2025", loc, now)
	assert.Error(t, err)
}

func TestParseKindFlag(t *testing.T) {
	k, err := parseKindFlag("")
	require.NoError(t, err)
	assert.Empty(t, k)

	k, err = parseKindFlag("Income")
	require.NoError(t, err)
	assert.Equal(t, "income", string(k))

	_, err = parseKindFlag("transfer")
	assert.Error(t, err)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.5 KB", formatFileSize(1536))
	assert.Equal(t, "2.0 MB", formatFileSize(2*1024*1024))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", formatRelativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatRelativeTime(now.Add(-time.Minute), now))
	assert.Equal(t, "3 hours ago", formatRelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "yesterday", formatRelativeTime(now.Add(-30*time.Hour), now))
	assert.Equal(t, "2025-02-01 09:30", formatRelativeTime(time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC), now))
}

func TestCollectOFXFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"jan.qfx", "feb.OFX", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	files, err := collectOFXFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "jan.qfx"), filepath.Join(dir, "feb.OFX")}, files)

	files, err = collectOFXFiles([]string{filepath.Join(dir, "*.qfx")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "jan.qfx")}, files)
}

func TestClosestCategory(t *testing.T) {
	categories := []model.Category{{Name: "Groceries"}, {Name: "Dining"}, {Name: "Gas"}}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "Grocries", want: "Groceries", ok: true},
		{in: "dinning", want: "Dining", ok: true},
		{in: "gaz", want: "Gas", ok: true},
		{in: "Vacation", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := closestCategory(tt.in, categories)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := closestCategory("Dining", nil)
	assert.False(t, ok)
}
