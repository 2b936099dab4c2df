package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const timeLayout = "15:04"

// ErrInvalidTimeString возвращается при некорректном формате времени
var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString время суток в формате HH:MM (время начала урока)
type TimeString struct {
	hour   int
	minute int
	valid  bool
}

// NewTimeString берет часы и минуты из time.Time
func NewTimeString(t time.Time) TimeString {
	return TimeString{hour: t.Hour(), minute: t.Minute(), valid: true}
}

// NewTimeStringFromString парсит строку HH:MM
func NewTimeStringFromString(s string) (TimeString, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return NewTimeString(t), nil
}

// MustTimeString парсит строку HH:MM и паникует при ошибке (для констант и тестов)
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// Hour возвращает часы
func (t TimeString) Hour() int { return t.hour }

// Minute возвращает минуты
func (t TimeString) Minute() int { return t.minute }

// IsZero true, если время не задано
func (t TimeString) IsZero() bool { return !t.valid }

// Validate проверяет диапазоны часов и минут
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	if t.hour < 0 || t.hour > 23 || t.minute < 0 || t.minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeString, t.hour, t.minute)
	}
	return nil
}

// Minutes количество минут от начала суток
func (t TimeString) Minutes() int {
	return t.hour*60 + t.minute
}

// AddMinutes сдвигает время; выход за пределы суток - ошибка
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total := t.Minutes() + minutes
	if total < 0 || total >= 24*60 {
		return TimeString{}, fmt.Errorf("%w: %s%+d minutes is out of day", ErrInvalidTimeString, t.String(), minutes)
	}
	return TimeString{hour: total / 60, minute: total % 60, valid: true}, nil
}

// IsBefore строго раньше
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter строго позже
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// Equal совпадает с другим временем
func (t TimeString) Equal(other TimeString) bool {
	return t.valid == other.valid && t.Minutes() == other.Minutes()
}

// On собирает момент времени: дата из date, время из t, в зоне loc
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.hour, t.minute, 0, 0, loc)
}

// String форматирует как HH:MM
func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// MarshalText для JSON/TOML
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText для JSON/TOML
func (t *TimeString) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*t = TimeString{}
		return nil
	}
	parsed, err := NewTimeStringFromString(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value хранится в БД как TEXT 'HH:MM'
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String(), nil
}

// Scan читает TEXT 'HH:MM' или TIME 'HH:MM:SS'
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) >= len("15:04:05") {
		s = s[:len(timeLayout)]
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
