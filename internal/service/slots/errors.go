package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slots: slot not found")

	// ErrCourseNotFound возвращается, когда курс для предзаполнения не найден
	ErrCourseNotFound = errors.New("slots: course not found")

	// ErrDuplicateSlot возвращается, когда слот с такими датой, временем и уровнем уже есть
	ErrDuplicateSlot = errors.New("slots: slot with the same date, time and class band already exists")

	// ErrSlotReferenced возвращается при удалении слота, на который ссылаются пропуски
	ErrSlotReferenced = errors.New("slots: slot is referenced by absences")

	// ErrSlotInUse возвращается при смене уровня у слота с пропусками или заявками
	// и при переносе даты слота, на который ссылаются пропуски
	ErrSlotInUse = errors.New("slots: class band or lesson date cannot change while absences or bookings reference the slot")

	// ErrCapacityConflict возвращается, когда новые лимиты не вмещают подтвержденные отработки
	ErrCapacityConflict = errors.New("slots: capacity edit would strand confirmed makeup bookings")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots: internal error")
)
