package create_absence

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

var validate = validator.New()

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	req.ChildName = strings.TrimSpace(req.ChildName)
	if req.ChildName == "" {
		return fmt.Errorf("%w: childName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.ChildName) > domain.MaxChildNameLength {
		return fmt.Errorf("%w: childName is too long", ErrInvalidInput)
	}

	if !req.ClassBand.IsValid() {
		return fmt.Errorf("%w: unknown classBand %q", ErrInvalidInput, req.ClassBand)
	}

	if req.AbsentDate.IsZero() {
		return fmt.Errorf("%w: absentDate is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.OriginalSlotID) == "" {
		return fmt.Errorf("%w: slotId is required", ErrInvalidInput)
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

// validateSlot проверяет, что пропуск действительно относится к этому слоту
func validateSlot(req *Request, slot *domain.Slot) error {
	if !slot.IsOn(req.AbsentDate) {
		return ErrDateMismatch
	}
	if slot.ClassBand != req.ClassBand {
		return ErrClassBandMismatch
	}
	return nil
}
