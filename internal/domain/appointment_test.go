package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentTransitionTable(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
}

func TestTransitionToRejectsWithoutMutating(t *testing.T) {
	a := &Appointment{ID: 1, Status: StatusPending}

	err := a.TransitionTo(StatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, StatusPending, a.Status)

	require.NoError(t, a.TransitionTo(StatusConfirmed))
	require.NoError(t, a.TransitionTo(StatusCompleted))
	assert.Equal(t, StatusCompleted, a.Status)
}

func TestParseAppointmentStatus(t *testing.T) {
	s, err := ParseAppointmentStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseAppointmentStatus("ARCHIVED")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAppointmentInputAlwaysPending(t *testing.T) {
	in := AppointmentInput{ServiceType: " Oil Change "}
	a := in.Appointment()
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, "Oil Change", a.ServiceType)
}
