package create_absence

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_absence: invalid input data")

	// ErrSlotNotFound возвращается, когда исходный слот не найден
	ErrSlotNotFound = errors.New("create_absence: slot not found")

	// ErrDateMismatch возвращается, когда дата слота не совпадает с датой пропуска
	ErrDateMismatch = errors.New("create_absence: slot date does not match absent date")

	// ErrClassBandMismatch возвращается, когда уровень слота не совпадает с заявленным
	ErrClassBandMismatch = errors.New("create_absence: slot class band does not match")

	// ErrSlotAlreadyStarted возвращается, когда урок уже начался
	ErrSlotAlreadyStarted = errors.New("create_absence: lesson has already started")

	// ErrNoEnrolledSeat возвращается, когда в слоте нет записанных учеников
	ErrNoEnrolledSeat = errors.New("create_absence: slot has no enrolled students")

	// ErrDuplicateAbsence возвращается, когда у ребенка уже есть действующий пропуск этого слота
	ErrDuplicateAbsence = errors.New("create_absence: absence for this child and slot already exists")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_absence: internal error")
)
