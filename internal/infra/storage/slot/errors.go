package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrDuplicateSlot возвращается, когда слот с такими датой, временем и уровнем уже существует
	ErrDuplicateSlot = errors.New("slot.repository: slot with the same date, time and class band already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
