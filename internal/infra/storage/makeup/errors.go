package makeup

import "errors"

var (
	// ErrRequestNotFound возвращается, когда заявка на отработку не найдена
	ErrRequestNotFound = errors.New("makeup.repository: makeup request not found")

	// ErrDuplicateToken возвращается при коллизии cancel/decline токена
	ErrDuplicateToken = errors.New("makeup.repository: token already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("makeup.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("makeup.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("makeup.repository: failed to scan row")
)
