package domain

import "time"

// RequestStatus represents the lifecycle state of a makeup request
type RequestStatus string

const (
	// RequestStatusConfirmed the request holds one seat in its slot's makeup counter
	RequestStatusConfirmed RequestStatus = "confirmed"
	// RequestStatusCancelled terminal; CancelReason carries the nuance
	RequestStatusCancelled RequestStatus = "cancelled"
)

// IsValid returns true if the status is known
func (s RequestStatus) IsValid() bool {
	return s == RequestStatusConfirmed || s == RequestStatusCancelled
}

// IsTerminal returns true if the request no longer holds a seat
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCancelled
}

// CancelReason metadata for the single cancelled state of absences and requests
type CancelReason string

const (
	CancelReasonByGuardian       CancelReason = "cancelled_by_guardian"
	CancelReasonDeclined         CancelReason = "declined_by_recipient"
	CancelReasonByAdmin          CancelReason = "cancelled_by_admin"
	CancelReasonAbsenceCancelled CancelReason = "absence_cancelled"
)

// CancelReasons all known reasons
var CancelReasons = []CancelReason{
	CancelReasonByGuardian,
	CancelReasonDeclined,
	CancelReasonByAdmin,
	CancelReasonAbsenceCancelled,
}

// IsValid returns true if the reason is known
func (r CancelReason) IsValid() bool {
	for _, known := range CancelReasons {
		if r == known {
			return true
		}
	}
	return false
}

// MakeupRequest represents a reservation to attend a different slot in place of a missed one
type MakeupRequest struct {
	ID         string
	AbsenceID  *string // nil for admin bookings made without an absence
	ChildName  string
	ClassBand  ClassBand
	AbsentDate *time.Time
	SlotID     string

	// SlotStartsAt denormalized copy of the slot start, kept in sync by slot edits
	SlotStartsAt time.Time

	Status       RequestStatus
	CancelReason *CancelReason
	ContactEmail *string

	CancelToken  string
	DeclineToken string
	ConfirmCode  *string

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsConfirmed returns true if the request holds a seat
func (r *MakeupRequest) IsConfirmed() bool {
	return r.Status == RequestStatusConfirmed
}

// IsLinked returns true if the request belongs to an absence
func (r *MakeupRequest) IsLinked() bool {
	return r.AbsenceID != nil && *r.AbsenceID != ""
}

// HasContact returns true if a notification can be sent
func (r *MakeupRequest) HasContact() bool {
	return r.ContactEmail != nil && *r.ContactEmail != ""
}

// RequestFilter фильтр для выборки заявок (админка, сверка)
type RequestFilter struct {
	SlotID    *string
	AbsenceID *string
	Status    *RequestStatus
	StartFrom *time.Time // по SlotStartsAt, включительно
	StartTo   *time.Time // по SlotStartsAt, строго до
}
