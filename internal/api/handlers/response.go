// Package handlers общие помощники HTTP-обработчиков: разбор JSON и единый формат ответов
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	msgInternalError = "内部エラーが発生しました。しばらくしてから再度お試しください"

	// maxBodyBytes ограничение размера тела запроса
	maxBodyBytes = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// DecodeJSON разбирает тело запроса в dst
// Пустое тело - ошибка, неизвестные поля - ошибка
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError отправляет ошибку с сообщением для пользователя
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondValidationError 400 с ошибками по полям
func RespondValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Fields: fields})
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondConflict 409
func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

// RespondInternalError 500 без деталей
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}
