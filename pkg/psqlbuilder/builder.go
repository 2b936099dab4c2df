package psqlbuilder

import (
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// builder squirrel с плейсхолдерами PostgreSQL ($1, $2, ...)
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select начинает SELECT запрос
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert начинает INSERT запрос
func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}

// Update начинает UPDATE запрос
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete начинает DELETE запрос
func Delete(table string) squirrel.DeleteBuilder {
	return builder.Delete(table)
}

// IsUUID проверяет, что строка годится для колонки UUID.
// Иначе PostgreSQL отвечает ошибкой 22P02, а не пустым результатом
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
