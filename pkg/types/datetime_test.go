package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserTime(t *testing.T) {
	got, err := ParseUserTime("2000-01-01 00:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseUserTime("2024-01-12", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), got)

	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err = ParseUserTime("2024-01-12 10:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 12, 8, 0, 0, 0, time.UTC), got)

	_, err = ParseUserTime("12/01/2024", time.UTC)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFormatUserTime(t *testing.T) {
	ts := time.Date(2024, 1, 12, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-12 08:30", FormatUserTime(ts, nil))
}
