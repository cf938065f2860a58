package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlert_HidesAfterLatestTimeout(t *testing.T) {
	a := alert{kind: alertInfo}

	require.NotNil(t, a.set("Sorted SUBJECT ascending", 5*time.Second))
	require.NotNil(t, a.set("Sorted SUBJECT descending", 5*time.Second))

	// The first timer belongs to a replaced message.
	a.expire(alertExpiredMsg{kind: alertInfo, seq: 1})
	assert.Equal(t, "Sorted SUBJECT descending", a.text)

	a.expire(alertExpiredMsg{kind: alertError, seq: 2})
	assert.Equal(t, "Sorted SUBJECT descending", a.text)

	a.expire(alertExpiredMsg{kind: alertInfo, seq: 2})
	assert.Empty(t, a.text)
}

func TestAlert_NoTimerWhenClearedOrDisabled(t *testing.T) {
	a := alert{kind: alertError}
	assert.Nil(t, a.set("", time.Second))
	assert.Nil(t, a.set("boom", 0))
	assert.Equal(t, "boom", a.text)
}
