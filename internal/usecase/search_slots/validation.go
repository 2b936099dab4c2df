package search_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if !req.ClassBand.IsValid() {
		return fmt.Errorf("%w: unknown classBand %q", ErrInvalidInput, req.ClassBand)
	}

	if req.AbsentDate.IsZero() {
		return fmt.Errorf("%w: absentDate is required", ErrInvalidInput)
	}

	return nil
}
