package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTimeAcceptedLayouts(t *testing.T) {
	for _, value := range []string{
		"2026-09-01T10:30",
		"2026-09-01T10:30:15",
		"2026-09-01T10:30:15Z",
		"2026-09-01 10:30",
		"2026-09-01",
	} {
		parsed, err := ParseDateTime(value)
		require.NoError(t, err, value)
		assert.Equal(t, time.UTC, parsed.Location())
		assert.Equal(t, 2026, parsed.Year())
	}
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "  ", "01/09/2026", "next tuesday"} {
		_, err := ParseDateTime(value)
		assert.Error(t, err, value)
	}
}

func TestMergeUnique(t *testing.T) {
	base := []string{"hiking", "food"}

	merged := MergeUnique(base, []string{"food", " diving ", "", "hiking"})
	assert.Equal(t, []string{"hiking", "food", "diving"}, merged)

	// base is not mutated
	assert.Equal(t, []string{"hiking", "food"}, base)

	assert.Equal(t, []string{"solo"}, MergeUnique(nil, []string{"solo"}))
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(10)
	b := GenerateRandomString(10)

	assert.Len(t, a, 10)
	assert.NotEqual(t, a, b)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo.jpg", SanitizeFilename("photo.jpg"))
	assert.Equal(t, "a_b.png", SanitizeFilename("../a b.png"))
	assert.Equal(t, "file", SanitizeFilename(""))
}
