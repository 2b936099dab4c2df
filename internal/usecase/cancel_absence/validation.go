package cancel_absence

import (
	"fmt"
	"strings"
)

// validateRequest проверяет, что указан ровно один способ доступа
func validateRequest(req *Request) error {
	req.ResumeToken = strings.TrimSpace(req.ResumeToken)
	req.AbsenceID = strings.TrimSpace(req.AbsenceID)
	req.ConfirmCode = strings.TrimSpace(req.ConfirmCode)

	switch {
	case req.ResumeToken != "":
		if req.AbsenceID != "" || req.ByAdmin {
			return fmt.Errorf("%w: resumeToken cannot be combined with absenceId", ErrInvalidInput)
		}
	case req.AbsenceID == "":
		return fmt.Errorf("%w: resumeToken or absenceId is required", ErrInvalidInput)
	case !req.ByAdmin && req.ConfirmCode == "":
		return fmt.Errorf("%w: confirmCode is required", ErrInvalidInput)
	}

	return nil
}
