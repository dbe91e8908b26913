package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTransition(t *testing.T) {
	forward := [][2]Status{
		{StatusActive, StatusActive},
		{StatusActive, StatusCompleted},
		{StatusActive, StatusClaimed},
		{StatusCompleted, StatusClaimed},
		{StatusClaimed, StatusClaimed},
	}
	for _, p := range forward {
		assert.True(t, ValidTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}

	backward := [][2]Status{
		{StatusCompleted, StatusActive},
		{StatusClaimed, StatusActive},
		{StatusClaimed, StatusCompleted},
	}
	for _, p := range backward {
		assert.False(t, ValidTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}
}

func TestTrackerObserve(t *testing.T) {
	tr := NewTracker()

	assert.Empty(t, tr.Observe([]Campaign{{ID: 1, Status: StatusActive}, {ID: 2, Status: StatusCompleted}}))
	assert.Empty(t, tr.Observe([]Campaign{{ID: 1, Status: StatusCompleted}, {ID: 2, Status: StatusClaimed}}))

	regs := tr.Observe([]Campaign{{ID: 1, Status: StatusActive}, {ID: 2, Status: StatusClaimed}})
	require.Len(t, regs, 1)
	assert.Equal(t, Regression{ID: 1, From: StatusCompleted, To: StatusActive}, regs[0])

	// The regressed value is remembered, so the next forward move is clean.
	assert.Empty(t, tr.Observe([]Campaign{{ID: 1, Status: StatusCompleted}}))
}
