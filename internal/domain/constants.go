package domain

import "time"

// Default configuration values
const (
	DefaultMakeupWindowDays = 30
	DefaultCutoffTime       = "12:00"
	DefaultTimezone         = "Asia/Tokyo"
)

// Business rules
const (
	// AbsenceCancelGracePeriod время после регистрации пропуска, в течение которого отмена разрешена всегда
	AbsenceCancelGracePeriod = 10 * time.Minute

	MinMakeupWindowDays = 1
	MaxMakeupWindowDays = 180

	MinCapacityLimit = 1
	MaxCapacityLimit = 200

	MaxRecurringWeeks    = 52
	MaxChildNameLength   = 100
	MaxCourseLabelLength = 100
)

// Availability thresholds for the three-tier classification
const (
	// LowAvailabilityThreshold при таком остатке мест слот показывается как "осталось мало"
	LowAvailabilityThreshold = 1
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
