package absences

import "errors"

var (
	// ErrAbsenceNotFound возвращается, когда пропуск не найден
	ErrAbsenceNotFound = errors.New("absences: absence not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("absences: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("absences: internal error")
)
