package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("0", 10))
	assert.Equal(t, 10, ParseInt("-3", 10))
}

func TestParseFloat(t *testing.T) {
	require.NotNil(t, ParseFloat("2.5"))
	assert.Equal(t, 2.5, *ParseFloat("2.5"))
	assert.Equal(t, 0.0, *ParseFloat("0"))
	assert.Nil(t, ParseFloat(""))
	assert.Nil(t, ParseFloat("abc"))
	assert.Nil(t, ParseFloat("-1"))
}

func TestParseTime(t *testing.T) {
	parsed, err := ParseTime("2026-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), parsed)

	_, err = ParseTime("2026-03-01 10:00:00")
	assert.Error(t, err)

	_, err = ParseTime("")
	assert.Error(t, err)
}

func TestGeneratePaymentReference(t *testing.T) {
	pattern := regexp.MustCompile(`^PAY-\d{13,}-[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := GeneratePaymentReference()
		assert.Regexp(t, pattern, ref)
		assert.False(t, seen[ref], "references must not repeat")
		seen[ref] = true
	}
}
