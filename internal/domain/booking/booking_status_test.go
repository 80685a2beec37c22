package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo_ForwardPath(t *testing.T) {
	path := []BookingStatus{
		StatusPending, StatusConfirmed, StatusEnRoute,
		StatusStarted, StatusInProgress, StatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestCanTransitionTo_NoSkippingStages(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
	}{
		{StatusPending, StatusEnRoute},
		{StatusPending, StatusInProgress},
		{StatusConfirmed, StatusStarted},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCompleted},
		{StatusEnRoute, StatusInProgress},
		{StatusEnRoute, StatusCompleted},
		{StatusStarted, StatusCompleted},
	}
	for _, tc := range cases {
		assert.False(t, tc.from.CanTransitionTo(tc.to),
			"%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestCanTransitionTo_NoBackwardMoves(t *testing.T) {
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))
	assert.False(t, StatusEnRoute.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusInProgress.CanTransitionTo(StatusStarted))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusInProgress))
}

func TestCanTransitionTo_SameStateAllowed(t *testing.T) {
	for status := range validTransitions {
		assert.True(t, status.CanTransitionTo(status), "%s -> %s", status, status)
	}
}

func TestCanBeCanceled(t *testing.T) {
	cancelable := []BookingStatus{
		StatusPending, StatusConfirmed, StatusEnRoute, StatusStarted, StatusInProgress,
	}
	for _, s := range cancelable {
		assert.True(t, s.CanBeCanceled(), "%s should be cancelable", s)
	}
	assert.False(t, StatusCompleted.CanBeCanceled())
	assert.False(t, StatusCanceled.CanBeCanceled())
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestPhase(t *testing.T) {
	assert.Equal(t, "upcoming", StatusPending.Phase())
	assert.Equal(t, "upcoming", StatusConfirmed.Phase())
	assert.Equal(t, "active", StatusEnRoute.Phase())
	assert.Equal(t, "active", StatusStarted.Phase())
	assert.Equal(t, "active", StatusInProgress.Phase())
	assert.Equal(t, "done", StatusCompleted.Phase())
	assert.Equal(t, "done", StatusCanceled.Phase())
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("en_route")
	require.NoError(t, err)
	assert.Equal(t, StatusEnRoute, status)

	_, err = ParseBookingStatus("teleported")
	assert.Error(t, err)
}
