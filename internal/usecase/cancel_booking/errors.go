package cancel_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrRequestNotFound возвращается, когда заявка не найдена (в том числе при неверном коде)
	ErrRequestNotFound = errors.New("cancel_booking: request not found")

	// ErrAlreadyProcessed возвращается, когда заявка уже отменена (повторное использование ссылки)
	ErrAlreadyProcessed = errors.New("cancel_booking: request is already processed")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
