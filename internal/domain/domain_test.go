package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/pkg/types"
)

func TestAbsence_InGracePeriod(t *testing.T) {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	a := &Absence{CreatedAt: created}

	assert.True(t, a.InGracePeriod(created))
	assert.True(t, a.InGracePeriod(created.Add(10*time.Minute)))
	assert.False(t, a.InGracePeriod(created.Add(10*time.Minute+time.Second)))
}

func TestAbsence_DeadlinePassed(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	a := &Absence{MakeupDeadline: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}

	// 2026-05-01 23:30 JST - последний день окна
	assert.False(t, a.DeadlinePassed(time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC), loc))
	// 2026-05-02 00:30 JST
	assert.True(t, a.DeadlinePassed(time.Date(2026, 5, 1, 15, 30, 0, 0, time.UTC), loc))
}

func TestSettings_MakeupWindow(t *testing.T) {
	s := Settings{MakeupWindowDays: 30}
	absent := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	from, to := s.MakeupWindow(absent)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, to, s.MakeupDeadline(absent))

	assert.True(t, s.InMakeupWindow(absent, from))
	assert.True(t, s.InMakeupWindow(absent, to))
	assert.False(t, s.InMakeupWindow(absent, to.AddDate(0, 0, 1)))
	assert.False(t, s.InMakeupWindow(absent, from.AddDate(0, 0, -1)))
}

func TestSlot_HasStarted(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	s := &Slot{
		LessonDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  types.MustTimeString("16:00"),
	}
	s.ComputeStartsAt(loc)

	assert.Equal(t, time.Date(2026, 4, 15, 7, 0, 0, 0, time.UTC), s.StartsAt.UTC())
	assert.False(t, s.HasStarted(s.StartsAt.Add(-time.Second)))
	assert.True(t, s.HasStarted(s.StartsAt))
}

func TestParseClassBand(t *testing.T) {
	band, err := ParseClassBand(" Advanced ")
	require.NoError(t, err)
	assert.Equal(t, ClassBandAdvanced, band)

	_, err = ParseClassBand("expert")
	assert.ErrorIs(t, err, ErrInvalidClassBand)
}
