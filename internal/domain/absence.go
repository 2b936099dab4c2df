package domain

import "time"

// AbsenceStatus represents the lifecycle state of an absence
type AbsenceStatus string

const (
	// AbsenceStatusPending awaiting a makeup booking
	AbsenceStatusPending AbsenceStatus = "pending"
	// AbsenceStatusMakeupConfirmed a makeup request is confirmed
	AbsenceStatusMakeupConfirmed AbsenceStatus = "makeup_confirmed"
	// AbsenceStatusCancelled terminal; CancelReason carries the nuance
	AbsenceStatusCancelled AbsenceStatus = "cancelled"
)

// AbsenceStatuses all known absence statuses
var AbsenceStatuses = []AbsenceStatus{
	AbsenceStatusPending,
	AbsenceStatusMakeupConfirmed,
	AbsenceStatusCancelled,
}

// IsValid returns true if the status is known
func (s AbsenceStatus) IsValid() bool {
	for _, known := range AbsenceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further action is possible
func (s AbsenceStatus) IsTerminal() bool {
	return s == AbsenceStatusCancelled
}

// Absence represents a guardian's declaration that a child will miss a specific slot
type Absence struct {
	ID             string
	ChildName      string
	ClassBand      ClassBand
	AbsentDate     time.Time // date only
	OriginalSlotID string
	ContactEmail   *string

	ResumeToken    string
	ConfirmCode    string
	MakeupDeadline time.Time // date only, inclusive

	Status       AbsenceStatus
	CancelReason *CancelReason
	CancelledAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the absence was cancelled
func (a *Absence) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// InGracePeriod returns true if now is within AbsenceCancelGracePeriod of creation (inclusive)
func (a *Absence) InGracePeriod(now time.Time) bool {
	return !now.After(a.CreatedAt.Add(AbsenceCancelGracePeriod))
}

// DeadlinePassed returns true if today (in loc) is after the makeup deadline
func (a *Absence) DeadlinePassed(now time.Time, loc *time.Location) bool {
	return TodayIn(now, loc).After(DateOnly(a.MakeupDeadline))
}

// CanBook returns true if the absence may be linked to a new makeup request
func (a *Absence) CanBook() bool {
	return a.Status == AbsenceStatusPending
}

// HasContact returns true if a notification can be sent
func (a *Absence) HasContact() bool {
	return a.ContactEmail != nil && *a.ContactEmail != ""
}

// AbsenceFilter фильтр для выборки пропусков (админка)
type AbsenceFilter struct {
	DateFrom       *time.Time
	DateTo         *time.Time
	ClassBand      *ClassBand
	Status         *AbsenceStatus
	OriginalSlotID *string
}
