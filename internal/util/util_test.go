package util

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 0.0, SafeDivide(1, 0))
	assert.Equal(t, 2.5, SafeDivide(5, 2))
	assert.Equal(t, 0.0, SafeDivide(math.Inf(1), 1))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 30.0, Percent(3, 10))
	assert.Equal(t, 0.0, Percent(3, 0))
}

func TestDaysBetween(t *testing.T) {
	d, err := DaysBetween("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	d, err = DaysBetween("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = DaysBetween("bad", "2024-03-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDayStart_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2024-06-01 20:00 UTC 在东八区已经是 6 月 2 日
	ts := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-06-02", FormatDate(DayStart(ts, loc)))
	assert.Equal(t, "2024-06-01", FormatDate(DayStart(ts, time.UTC)))
}

func TestMustParseInt(t *testing.T) {
	assert.Equal(t, 7, MustParseInt("7", 3))
	assert.Equal(t, 3, MustParseInt("x", 3))
}
