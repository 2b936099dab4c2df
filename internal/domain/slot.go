package domain

import (
	"time"

	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Slot represents one bookable lesson occurrence with its own capacity counters.
// ID is an opaque surrogate; date, start time and class band are plain data
// and may be edited without changing identity.
type Slot struct {
	ID          string
	LessonDate  time.Time        // date only (00:00 UTC)
	StartTime   types.TimeString // HH:MM in the school's timezone
	StartsAt    time.Time        // canonical lesson start, derived from LessonDate + StartTime
	CourseLabel string
	ClassBand   ClassBand

	CapacityLimit      int // seats for regular enrollment
	CapacityCurrent    int // regular seats currently filled
	CapacityMakeupUsed int // seats consumed by makeup bookings

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Capacity returns the computed availability view of the slot
func (s *Slot) Capacity() Capacity {
	return ComputeCapacity(s.CapacityLimit, s.CapacityCurrent, s.CapacityMakeupUsed)
}

// HasStarted returns true if the lesson start is not strictly in the future
func (s *Slot) HasStarted(now time.Time) bool {
	return !s.StartsAt.After(now)
}

// IsOn returns true if the slot takes place on the given calendar date
func (s *Slot) IsOn(date time.Time) bool {
	return SameDate(s.LessonDate, date)
}

// CountersValid checks 0 <= current <= limit and makeupUsed >= 0
func (s *Slot) CountersValid() bool {
	return s.CapacityCurrent >= 0 &&
		s.CapacityCurrent <= s.CapacityLimit &&
		s.CapacityMakeupUsed >= 0
}

// ComputeStartsAt recalculates StartsAt from LessonDate and StartTime in loc
func (s *Slot) ComputeStartsAt(loc *time.Location) {
	s.StartsAt = s.StartTime.On(s.LessonDate, loc)
}

// SlotFilter фильтр для выборки слотов
type SlotFilter struct {
	DateFrom      *time.Time // включительно
	DateTo        *time.Time // включительно
	ClassBand     *ClassBand
	StartsAfter   *time.Time // строго после
	StartsBefore  *time.Time // строго до
	StartTime     *types.TimeString
	CourseLabel   *string
	Weekday       *time.Weekday
	OnlyAvailable bool // только слоты с remaining > 0
}
