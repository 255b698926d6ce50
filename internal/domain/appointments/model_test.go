package appointments

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/domain/apperr"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("  No_Show ")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, st)

	_, err = ParseStatus("done")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusCompleted, false},
		{StatusScheduled, Status("done"), false},
	}
	for _, tc := range cases {
		err := CheckTransition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		assert.True(t, errors.Is(err, apperr.ErrInvalidTransition), "%s -> %s: %v", tc.from, tc.to, err)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusNoShow.Terminal())
	assert.False(t, Status("done").Terminal())
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("clinic", -3*60*60)

	// 01:30 UTC del 11 todavía es el 10 en la clínica.
	now := time.Date(2026, 3, 11, 1, 30, 0, 0, time.UTC)
	start, end := DayBounds(now, loc)

	assert.True(t, start.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)))
	assert.True(t, end.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, loc)))
}

func TestDayBoundsAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08: cambio de horario, el día dura 23 horas.
	start, end := DayBounds(time.Date(2026, 3, 8, 12, 0, 0, 0, ny), ny)
	assert.Equal(t, 23*time.Hour, end.Sub(start))

	// 2026-11-01: el día dura 25 horas.
	start, end = DayBounds(time.Date(2026, 11, 1, 12, 0, 0, 0, ny), ny)
	assert.Equal(t, 25*time.Hour, end.Sub(start))
}
