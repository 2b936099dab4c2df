package domain

import (
	"time"

	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Course is a template of a recurring lesson used to prefill slot creation.
// Nothing is booked against a course directly.
type Course struct {
	ID            string
	Label         string
	Weekday       time.Weekday
	StartTime     types.TimeString
	ClassBand     ClassBand
	CapacityLimit int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
