package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja"
)

const (
	msgValidationFailed = "入力内容に誤りがあります"

	notBlankTag = "notblank"
)

var (
	// Validate общий валидатор DTO запросов
	Validate   *validator.Validate
	translator ut.Translator
)

func init() {
	Validate = validator.New()

	// Сообщения об ошибках полей на японском
	jaLocale := ja.New()
	uni := ut.New(jaLocale, jaLocale)
	translator, _ = uni.GetTranslator("ja")
	_ = ja_translations.RegisterDefaultTranslations(Validate, translator)

	// В ошибках используем имена полей из json тегов
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlank)
	_ = Validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + "は空白にできません"
		},
	)
}

// notBlank строка не пустая после обрезки пробелов
func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// ValidateStruct проверяет DTO по validate тегам
// Возвращает ошибки по полям (json имя -> сообщение) или nil
func ValidateStruct(dst interface{}) map[string]string {
	err := Validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return fields
}

// DecodeAndValidate разбирает JSON и проверяет теги
// При ошибке сам отвечает 400 и возвращает false
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, msgInvalidBody string) bool {
	if err := DecodeJSON(r, dst); err != nil {
		RespondBadRequest(w, msgInvalidBody)
		return false
	}
	if fields := ValidateStruct(dst); fields != nil {
		RespondValidationError(w, msgValidationFailed, fields)
		return false
	}
	return true
}
