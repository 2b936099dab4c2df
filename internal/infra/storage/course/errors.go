package course

import "errors"

var (
	// ErrCourseNotFound возвращается, когда курс не найден
	ErrCourseNotFound = errors.New("course.repository: course not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("course.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("course.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("course.repository: failed to scan row")
)
