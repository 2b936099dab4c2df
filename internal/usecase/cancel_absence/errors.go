package cancel_absence

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_absence: invalid input data")

	// ErrAbsenceNotFound возвращается, когда пропуск не найден (в том числе при неверном коде)
	ErrAbsenceNotFound = errors.New("cancel_absence: absence not found")

	// ErrAlreadyCancelled возвращается, когда пропуск уже отменен
	ErrAlreadyCancelled = errors.New("cancel_absence: absence is already cancelled")

	// ErrLateCancellation возвращается, когда после 10 минут место в исходном слоте уже занято
	ErrLateCancellation = errors.New("cancel_absence: original slot seat can no longer be reclaimed")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_absence: internal error")
)
