package middleware

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
)

// AdminTokenHeader заголовок с токеном администратора
const AdminTokenHeader = "X-Admin-Token"

const msgUnauthorized = "管理者認証が必要です"

type contextKey string

const adminKey contextKey = "admin"

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// AdminAuth пропускает запрос, если X-Admin-Token совпадает с bcrypt хешем из конфигурации
// Пустой хеш закрывает админку полностью
func AdminAuth(tokenHash string, logger Logger) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			if token == "" || len(hash) == 0 {
				logger.Warn("%s %s - missing admin token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				logger.Warn("%s %s - invalid admin token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin true, если запрос прошел AdminAuth
func IsAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(adminKey).(bool)
	return ok && admin
}
