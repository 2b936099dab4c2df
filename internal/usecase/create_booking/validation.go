package create_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

var validate = validator.New()

// validateRequest проверяет способ доступа и данные ребенка для записи без пропуска
func validateRequest(req *Request) error {
	req.ResumeToken = strings.TrimSpace(req.ResumeToken)
	req.AbsenceID = strings.TrimSpace(req.AbsenceID)
	req.ConfirmCode = strings.TrimSpace(req.ConfirmCode)
	req.SlotID = strings.TrimSpace(req.SlotID)
	req.ChildName = strings.TrimSpace(req.ChildName)

	if req.SlotID == "" {
		return fmt.Errorf("%w: slotId is required", ErrInvalidInput)
	}

	switch {
	case req.ResumeToken != "":
		if req.AbsenceID != "" || req.ByAdmin {
			return fmt.Errorf("%w: resumeToken cannot be combined with absenceId", ErrInvalidInput)
		}
		return nil
	case req.AbsenceID != "":
		if !req.ByAdmin && req.ConfirmCode == "" {
			return fmt.Errorf("%w: confirmCode is required", ErrInvalidInput)
		}
		return nil
	case !req.ByAdmin:
		return fmt.Errorf("%w: resumeToken or absenceId is required", ErrInvalidInput)
	}

	// Запись администратором без пропуска
	if req.ChildName == "" {
		return fmt.Errorf("%w: childName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.ChildName) > domain.MaxChildNameLength {
		return fmt.Errorf("%w: childName is too long", ErrInvalidInput)
	}
	if !req.ClassBand.IsValid() {
		return fmt.Errorf("%w: unknown classBand %q", ErrInvalidInput, req.ClassBand)
	}
	if req.ContactEmail != nil {
		email := strings.TrimSpace(*req.ContactEmail)
		if email == "" {
			req.ContactEmail = nil
		} else {
			if err := validate.Var(email, "email"); err != nil {
				return fmt.Errorf("%w: invalid contactEmail", ErrInvalidInput)
			}
			req.ContactEmail = &email
		}
	}

	return nil
}

// validateAbsence проверяет, что к пропуску можно привязать новую отработку
func validateAbsence(absence *domain.Absence) error {
	switch absence.Status {
	case domain.AbsenceStatusPending:
		return nil
	case domain.AbsenceStatusMakeupConfirmed:
		return ErrAlreadyBooked
	default:
		return ErrAbsenceCancelled
	}
}
