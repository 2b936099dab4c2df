package dbmetrics

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/m04kA/kesseki-furikae/pkg/metrics"
)

// DefaultStatsInterval период сбора статистики пула соединений
const DefaultStatsInterval = 15 * time.Second

// DB обёртка над *sql.DB, которая пишет длительность запросов в prometheus
// Если metrics == nil, работает как обычный *sql.DB
type DB struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// Wrap оборачивает *sql.DB без запуска сбора статистики пула
func Wrap(db *sql.DB, m *metrics.Metrics) *DB {
	return &DB{db: db, metrics: m}
}

// WrapWithDefault оборачивает *sql.DB и запускает сбор статистики пула до закрытия stopCh
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, m)
	if m != nil {
		go wrapped.collectPoolStats(DefaultStatsInterval, stopCh)
	}
	return wrapped
}

// Unwrap возвращает исходный *sql.DB (нужен goose и health-check)
func (d *DB) Unwrap() *sql.DB {
	return d.db
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.observe(query, start, err)
	return res, err
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observe(query, start, err)
	return rows, err
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.observe(query, start, row.Err())
	return row
}

// BeginTx начинает транзакцию; запросы внутри неё тоже попадают в метрики
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &instrumentedTx{tx: tx, parent: d}, nil
}

func (d *DB) observe(query string, start time.Time, err error) {
	if d.metrics == nil {
		return
	}
	op := operationOf(query)
	d.metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && err != sql.ErrNoRows {
		d.metrics.DBQueryErrors.WithLabelValues(op).Inc()
	}
}

func (d *DB) collectPoolStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := d.db.Stats()
			d.metrics.DBOpenConnections.Set(float64(stats.OpenConnections))
			d.metrics.DBInUse.Set(float64(stats.InUse))
			d.metrics.DBIdle.Set(float64(stats.Idle))
			d.metrics.DBWaitCount.Set(float64(stats.WaitCount))
		case <-stopCh:
			return
		}
	}
}

type instrumentedTx struct {
	tx     *sql.Tx
	parent *DB
}

func (t *instrumentedTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.parent.observe(query, start, err)
	return res, err
}

func (t *instrumentedTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.parent.observe(query, start, err)
	return rows, err
}

func (t *instrumentedTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.parent.observe(query, start, row.Err())
	return row
}

func (t *instrumentedTx) Commit() error   { return t.tx.Commit() }
func (t *instrumentedTx) Rollback() error { return t.tx.Rollback() }

// operationOf берет первое слово запроса (SELECT/INSERT/UPDATE/DELETE) как метку
func operationOf(query string) string {
	q := strings.TrimSpace(query)
	if idx := strings.IndexAny(q, " \n\t"); idx > 0 {
		q = q[:idx]
	}
	return strings.ToLower(q)
}
