package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/kesseki-furikae/pkg/dbmetrics"
)

// Коды PostgreSQL, при которых транзакцию имеет смысл повторить
const (
	codeSerializationFailure pq.ErrorCode = "40001"
	codeDeadlockDetected     pq.ErrorCode = "40P01"
)

// DefaultMaxAttempts количество попыток выполнить транзакцию
const DefaultMaxAttempts = 3

var (
	// ErrBeginTx возвращается, когда не удалось открыть транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается, когда не удалось зафиксировать транзакцию
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// Manager менеджер транзакций
// Кладет транзакцию в контекст, репозитории достают её через dbmetrics.GetExecutor
type Manager struct {
	db          TxBeginner
	maxAttempts int
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner) *Manager {
	return &Manager{
		db:          db,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Do выполняет fn в транзакции READ COMMITTED
// Согласованность счетчиков обеспечивается блокировками строк (SELECT ... FOR UPDATE) внутри fn
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE
func (m *Manager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *Manager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов - используем уже открытую транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.runOnce(ctx, opts, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (m *Manager) runOnce(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

// isRetryable проверяет, что транзакция упала из-за конфликта сериализации или дедлока
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
