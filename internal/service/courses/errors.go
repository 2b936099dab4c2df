package courses

import "errors"

var (
	// ErrCourseNotFound возвращается, когда курс не найден
	ErrCourseNotFound = errors.New("courses: course not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("courses: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("courses: internal error")
)
