package cancel_absence

import (
	"context"

	cancelAbsence "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_absence"
)

type CancelAbsenceUseCase interface {
	Execute(ctx context.Context, req *cancelAbsence.Request) (*cancelAbsence.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
