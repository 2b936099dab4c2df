package domain

import (
	"errors"
	"fmt"
)

// AvailabilityLevel is the three-tier signal shown to guardians
type AvailabilityLevel string

const (
	AvailabilityOpen AvailabilityLevel = "open"
	AvailabilityLow  AvailabilityLevel = "low"
	AvailabilityFull AvailabilityLevel = "full"
)

// Capacity is the computed view over a slot's three counters.
// Every place that shows or decides availability goes through this type.
type Capacity struct {
	Limit           int
	Current         int
	MakeupUsed      int
	MakeupAvailable int // seats opened by enrolled-but-absent students
	Remaining       int // never negative
	Level           AvailabilityLevel
}

// MakeupAvailable returns limit - current: seats released by absent enrolled students
func MakeupAvailable(limit, current int) int {
	return limit - current
}

// Remaining returns max(0, (limit - current) - makeupUsed)
func Remaining(limit, current, makeupUsed int) int {
	remaining := MakeupAvailable(limit, current) - makeupUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Classify maps remaining seats to open (>=2), low (==1) or full (0)
func Classify(remaining int) AvailabilityLevel {
	switch {
	case remaining <= 0:
		return AvailabilityFull
	case remaining == LowAvailabilityThreshold:
		return AvailabilityLow
	default:
		return AvailabilityOpen
	}
}

// ComputeCapacity builds the capacity view from raw counters
func ComputeCapacity(limit, current, makeupUsed int) Capacity {
	remaining := Remaining(limit, current, makeupUsed)
	return Capacity{
		Limit:           limit,
		Current:         current,
		MakeupUsed:      makeupUsed,
		MakeupAvailable: MakeupAvailable(limit, current),
		Remaining:       remaining,
		Level:           Classify(remaining),
	}
}

// CanBook returns true if at least one makeup seat is free
func (c Capacity) CanBook() bool {
	return c.Remaining >= 1
}

// Label returns the human-readable availability status
func (c Capacity) Label() string {
	switch c.Level {
	case AvailabilityFull:
		return "full"
	case AvailabilityLow:
		return fmt.Sprintf("low, %d remaining", c.Remaining)
	default:
		return fmt.Sprintf("open, %d remaining", c.Remaining)
	}
}

var (
	// ErrSlotFull no makeup seat is left
	ErrSlotFull = errors.New("slot has no makeup seats left")

	// ErrNoEnrolledSeat capacityCurrent is already zero
	ErrNoEnrolledSeat = errors.New("slot has no enrolled seat to release")
)

// Every lifecycle path mutates counters only through the four methods below.

// ReserveMakeupSeat takes one makeup seat; fails when remaining is zero
func (s *Slot) ReserveMakeupSeat() error {
	if !s.Capacity().CanBook() {
		return ErrSlotFull
	}
	s.CapacityMakeupUsed++
	return nil
}

// ReleaseMakeupSeat returns one makeup seat, never going below zero
func (s *Slot) ReleaseMakeupSeat() {
	if s.CapacityMakeupUsed > 0 {
		s.CapacityMakeupUsed--
	}
}

// ReleaseEnrolledSeat frees a regular seat for an absent student
func (s *Slot) ReleaseEnrolledSeat() error {
	if s.CapacityCurrent <= 0 {
		return ErrNoEnrolledSeat
	}
	s.CapacityCurrent--
	return nil
}

// RestoreEnrolledSeat gives the seat back to the enrolled student, capped at the limit
func (s *Slot) RestoreEnrolledSeat() {
	if s.CapacityCurrent < s.CapacityLimit {
		s.CapacityCurrent++
	}
}

// HasFreeRegularSeat returns true if capacityCurrent < capacityLimit
func (s *Slot) HasFreeRegularSeat() bool {
	return s.CapacityCurrent < s.CapacityLimit
}
