package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда заявка не найдена
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInvalidTimeRange возвращается, когда начало периода позже конца
	ErrInvalidTimeRange = errors.New("bookings: invalid time range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
