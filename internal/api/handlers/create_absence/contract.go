package create_absence

import (
	"context"

	createAbsence "github.com/m04kA/kesseki-furikae/internal/usecase/create_absence"
)

type CreateAbsenceUseCase interface {
	Execute(ctx context.Context, req *createAbsence.Request) (*createAbsence.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
