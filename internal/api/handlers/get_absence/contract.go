package get_absence

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/service/absences/models"
)

type AbsenceService interface {
	GetByResumeToken(ctx context.Context, token string) (*models.AbsenceResponse, error)
	LookupByConfirmCode(ctx context.Context, req *models.LookupRequest) (*models.LookupResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
