package domain

import "time"

// DateOnly truncates t to its calendar date at 00:00 UTC.
// All lesson and absence dates are stored in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into a date-only value
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// SameDate compares calendar dates ignoring time and location
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TodayIn returns the calendar date of now as seen in loc
func TodayIn(now time.Time, loc *time.Location) time.Time {
	return DateOnly(now.In(loc))
}
