package cancel_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// validateRequest проверяет, что указан ровно один способ доступа
func validateRequest(req *Request) error {
	req.CancelToken = strings.TrimSpace(req.CancelToken)
	req.DeclineToken = strings.TrimSpace(req.DeclineToken)
	req.RequestID = strings.TrimSpace(req.RequestID)
	req.ConfirmCode = strings.TrimSpace(req.ConfirmCode)

	given := 0
	for _, v := range []string{req.CancelToken, req.DeclineToken, req.RequestID} {
		if v != "" {
			given++
		}
	}
	if given != 1 {
		return fmt.Errorf("%w: exactly one of cancelToken, declineToken or requestId is required", ErrInvalidInput)
	}

	if req.RequestID == "" && req.ByAdmin {
		return fmt.Errorf("%w: admin cancellation requires requestId", ErrInvalidInput)
	}

	if req.RequestID != "" && !req.ByAdmin && req.ConfirmCode == "" {
		return fmt.Errorf("%w: confirmCode is required", ErrInvalidInput)
	}

	return nil
}

// reasonFor определяет причину отмены по способу доступа
func reasonFor(req *Request) domain.CancelReason {
	switch {
	case req.DeclineToken != "":
		return domain.CancelReasonDeclined
	case req.ByAdmin:
		return domain.CancelReasonByAdmin
	default:
		return domain.CancelReasonByGuardian
	}
}
