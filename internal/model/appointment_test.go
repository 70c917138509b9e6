package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PST", 8*60*60)

// 2025-03-10 is a Monday
func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, manila)
}

func TestWorkingHoursContains(t *testing.T) {
	hours := DefaultWorkingHours(manila)

	tests := []struct {
		name     string
		start    time.Time
		duration time.Duration
		want     bool
	}{
		{"opening slot", at(10, 8, 0), 30 * time.Minute, true},
		{"ends at closing", at(10, 16, 30), 30 * time.Minute, true},
		{"before opening", at(10, 7, 45), 30 * time.Minute, false},
		{"runs past closing", at(10, 16, 45), 30 * time.Minute, false},
		{"after closing", at(10, 17, 0), 15 * time.Minute, false},
		{"friday", at(14, 10, 0), time.Hour, true},
		{"saturday", at(15, 10, 0), time.Hour, false},
		{"sunday", at(16, 10, 0), time.Hour, false},
		{"zero length", at(10, 10, 0), 0, false},
		{"utc input converted", time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC), time.Hour, true},
		{"utc input before opening", time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC), time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hours.Contains(tt.start, tt.start.Add(tt.duration)))
		})
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	apt, err := NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), time.Hour, "checkup", at(1, 9, 0))
	require.NoError(t, err)

	assert.True(t, apt.Overlaps(at(10, 10, 30), at(10, 11, 30)))
	assert.True(t, apt.Overlaps(at(10, 9, 30), at(10, 10, 1)))
	assert.True(t, apt.Overlaps(at(10, 9, 0), at(10, 12, 0)))
	assert.False(t, apt.Overlaps(at(10, 11, 0), at(10, 11, 30)), "back to back after")
	assert.False(t, apt.Overlaps(at(10, 9, 0), at(10, 10, 0)), "back to back before")
}

func TestNewAppointmentDuration(t *testing.T) {
	_, err := NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), 10*time.Minute, "", at(1, 9, 0))
	assert.ErrorIs(t, err, ErrAppointmentTooShort)

	_, err = NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), 5*time.Hour, "", at(1, 9, 0))
	assert.ErrorIs(t, err, ErrAppointmentTooLong)

	apt, err := NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), 45*time.Minute, " follow-up ", at(1, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, at(10, 10, 45), apt.EndsAt())
	assert.Equal(t, "follow-up", apt.Reason)
	assert.Equal(t, AppointmentStatusScheduled, apt.Status)
	assert.True(t, apt.BlocksSchedule())
}

func TestAppointmentLifecycle(t *testing.T) {
	now := at(10, 9, 0)
	apt, err := NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), time.Hour, "checkup", now)
	require.NoError(t, err)

	assert.ErrorIs(t, apt.Complete("", now), ErrAppointmentNotStarted)
	require.NoError(t, apt.Start(now))
	assert.True(t, apt.BlocksSchedule())
	assert.ErrorIs(t, apt.Cancel("late", now), ErrAppointmentNotScheduled)
	require.NoError(t, apt.Complete("BP normal", now))
	assert.Equal(t, "BP normal", apt.Notes)
	assert.False(t, apt.BlocksSchedule())
	assert.ErrorIs(t, apt.Cancel("late", now), ErrAppointmentCompleted)
}

func TestAppointmentCancel(t *testing.T) {
	now := at(10, 9, 0)
	apt, _ := NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), time.Hour, "checkup", now)

	assert.ErrorIs(t, apt.Cancel("  ", now), ErrCancelReasonRequired)
	require.NoError(t, apt.Cancel("patient request", now))
	require.NotNil(t, apt.CancelReason)
	assert.Equal(t, "patient request", *apt.CancelReason)
	assert.False(t, apt.BlocksSchedule())
	assert.ErrorIs(t, apt.Cancel("again", now), ErrAppointmentCancelled)
	assert.ErrorIs(t, apt.Reschedule(at(11, 10, 0), time.Hour, now), ErrAppointmentNotScheduled)
}

func TestAppointmentReschedule(t *testing.T) {
	now := at(10, 9, 0)
	apt, _ := NewAppointment(uuid.New(), uuid.New(), at(10, 10, 0), time.Hour, "checkup", now)

	require.NoError(t, apt.Reschedule(at(11, 14, 0), 30*time.Minute, now))
	assert.Equal(t, at(11, 14, 0), apt.StartTime)
	assert.Equal(t, 30*time.Minute, apt.Duration())
	assert.ErrorIs(t, apt.Reschedule(at(11, 14, 0), time.Minute, now), ErrAppointmentTooShort)
}
