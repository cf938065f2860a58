package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeHuman(t *testing.T) {
	now := time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "zero", in: time.Time{}, want: "Unknown"},
		{name: "today", in: now.Add(-2 * time.Hour), want: "Today"},
		{name: "yesterday", in: now.Add(-24 * time.Hour), want: "Yesterday"},
		{name: "days ago", in: now.Add(-3 * 24 * time.Hour), want: "3d ago"},
		{name: "same year", in: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), want: "Jan 15"},
		{name: "older", in: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), want: "Jan 15 '23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimeHuman(tt.in, now))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "100%", FormatPercent(100))
	assert.Equal(t, "85.5%", FormatPercent(85.5))
	assert.Equal(t, "0%", FormatPercent(0))
	assert.Equal(t, "33.3%", FormatPercent(100.0/3))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1 recipient", FormatCount(1, "recipient"))
	assert.Equal(t, "0 recipients", FormatCount(0, "recipient"))
	assert.Equal(t, "12 rows", FormatCount(12, "row"))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "—", FormatTimestamp(time.Time{}))
	assert.Equal(t, "—", FormatOptionalTimestamp(nil))
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	assert.Equal(t, "2024-03-01 09:30", FormatOptionalTimestamp(&ts))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "welcome...", TruncateString("welcome aboard", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "—", OrDash("  "))
	assert.Equal(t, "x", OrDash("x"))
}
