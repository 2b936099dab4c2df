package domain

import (
	"time"

	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Settings global booking settings (singleton).
// Loaded explicitly and passed into deadline computations.
type Settings struct {
	MakeupWindowDays int
	CutoffTime       types.TimeString // display-only
	UpdatedAt        time.Time
}

// DefaultSettings returns settings used when nothing is stored yet
func DefaultSettings() Settings {
	return Settings{
		MakeupWindowDays: DefaultMakeupWindowDays,
		CutoffTime:       types.MustTimeString(DefaultCutoffTime),
	}
}

// MakeupDeadline returns absentDate + MakeupWindowDays
func (s Settings) MakeupDeadline(absentDate time.Time) time.Time {
	return DateOnly(absentDate).AddDate(0, 0, s.MakeupWindowDays)
}

// MakeupWindow returns the inclusive date range [absentDate - W, absentDate + W]
func (s Settings) MakeupWindow(absentDate time.Time) (from, to time.Time) {
	date := DateOnly(absentDate)
	return date.AddDate(0, 0, -s.MakeupWindowDays), date.AddDate(0, 0, s.MakeupWindowDays)
}

// InMakeupWindow returns true if date lies inside the makeup window of absentDate
func (s Settings) InMakeupWindow(absentDate, date time.Time) bool {
	from, to := s.MakeupWindow(absentDate)
	d := DateOnly(date)
	return !d.Before(from) && !d.After(to)
}
