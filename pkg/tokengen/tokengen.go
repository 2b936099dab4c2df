package tokengen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	// tokenBytes длина токена до кодирования (256 бит)
	tokenBytes = 32

	// codeDigits длина кода подтверждения
	codeDigits = 6
)

var codeSpace = big.NewInt(1_000_000)

// Generator выпускает токены-ссылки и коды подтверждения
type Generator struct{}

// New создает генератор
func New() *Generator {
	return &Generator{}
}

// NewOpaqueToken возвращает случайный токен в base64url без паддинга
// Используется для resume/cancel/decline ссылок - это bearer-права без срока действия
func (g *Generator) NewOpaqueToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tokengen: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewConfirmCode возвращает 6-значный код с ведущими нулями
// Код не уникален, поиск по нему всегда возвращает список
func (g *Generator) NewConfirmCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("tokengen: generate confirm code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
