package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrAbsenceNotFound возвращается, когда пропуск не найден (в том числе при неверном коде)
	ErrAbsenceNotFound = errors.New("create_booking: absence not found")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrClassBandMismatch возвращается, когда уровень слота не совпадает с заявленным
	ErrClassBandMismatch = errors.New("create_booking: slot class band does not match")

	// ErrOriginalSlot возвращается при попытке отработки в пропущенном слоте
	ErrOriginalSlot = errors.New("create_booking: cannot book the missed slot itself")

	// ErrSlotAlreadyStarted возвращается, когда урок уже начался
	ErrSlotAlreadyStarted = errors.New("create_booking: lesson has already started")

	// ErrOutsideWindow возвращается, когда слот вне окна отработки
	ErrOutsideWindow = errors.New("create_booking: slot is outside the makeup window")

	// ErrDeadlinePassed возвращается, когда срок отработки истек
	ErrDeadlinePassed = errors.New("create_booking: makeup deadline has passed")

	// ErrAlreadyBooked возвращается, когда у пропуска уже есть подтвержденная отработка
	ErrAlreadyBooked = errors.New("create_booking: absence already has a confirmed makeup")

	// ErrAbsenceCancelled возвращается, когда пропуск отменен
	ErrAbsenceCancelled = errors.New("create_booking: absence is cancelled")

	// ErrDuplicateBooking возвращается, когда ребенок уже записан на этот слот
	ErrDuplicateBooking = errors.New("create_booking: child is already booked on this slot")

	// ErrSlotFull возвращается, когда свободных мест для отработки нет
	ErrSlotFull = errors.New("create_booking: slot is full")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
