package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/kesseki-furikae/internal/config"
	"github.com/m04kA/kesseki-furikae/internal/domain"
	absenceRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/absence"
	courseRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/course"
	makeupRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/makeup"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	settingsRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/settings"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/migrations"
	"github.com/m04kA/kesseki-furikae/pkg/dbmetrics"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/metrics"
	"github.com/m04kA/kesseki-furikae/pkg/txmanager"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Полные наборы методов репозиториев; их реализуют и memory, и postgres хранилища

type slotStore interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	LockByID(ctx context.Context, id string) (*domain.Slot, error)
	GetByNaturalKey(ctx context.Context, date time.Time, startTime types.TimeString, band domain.ClassBand) (*domain.Slot, error)
	List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error)
	Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	UpdateCounters(ctx context.Context, id string, current, makeupUsed int) error
	Delete(ctx context.Context, id string) error
}

type absenceStore interface {
	Create(ctx context.Context, absence *domain.Absence) (*domain.Absence, error)
	GetByID(ctx context.Context, id string) (*domain.Absence, error)
	LockByID(ctx context.Context, id string) (*domain.Absence, error)
	GetByResumeToken(ctx context.Context, token string) (*domain.Absence, error)
	ListByConfirmCode(ctx context.Context, code string) ([]*domain.Absence, error)
	CountByOriginalSlot(ctx context.Context, slotID string) (int, error)
	ExistsOpenForChild(ctx context.Context, slotID, childName string) (bool, error)
	List(ctx context.Context, filter domain.AbsenceFilter) ([]*domain.Absence, error)
	UpdateStatus(ctx context.Context, id string, status domain.AbsenceStatus, reason *domain.CancelReason, at time.Time) error
}

type requestStore interface {
	Create(ctx context.Context, req *domain.MakeupRequest) (*domain.MakeupRequest, error)
	GetByID(ctx context.Context, id string) (*domain.MakeupRequest, error)
	LockByID(ctx context.Context, id string) (*domain.MakeupRequest, error)
	GetByCancelToken(ctx context.Context, token string) (*domain.MakeupRequest, error)
	GetByDeclineToken(ctx context.Context, token string) (*domain.MakeupRequest, error)
	ListByConfirmCode(ctx context.Context, code string) ([]*domain.MakeupRequest, error)
	ListByAbsence(ctx context.Context, absenceID string) ([]*domain.MakeupRequest, error)
	ListBySlot(ctx context.Context, slotID string) ([]*domain.MakeupRequest, error)
	List(ctx context.Context, filter domain.RequestFilter) ([]*domain.MakeupRequest, error)
	ExistsConfirmedForChild(ctx context.Context, slotID, childName string) (bool, error)
	CountConfirmedBySlot(ctx context.Context, slotID string) (int, error)
	MarkCancelled(ctx context.Context, id string, reason domain.CancelReason, at time.Time) error
	UpdateSlotStartsAt(ctx context.Context, slotID string, startsAt time.Time) (int64, error)
	DeleteBySlot(ctx context.Context, slotID string) (int64, error)
}

type courseStore interface {
	Create(ctx context.Context, course *domain.Course) (*domain.Course, error)
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) (*domain.Course, error)
	Delete(ctx context.Context, id string) error
}

type settingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage репозитории, менеджер транзакций и health-check выбранного хранилища
type storage struct {
	slots    slotStore
	absences absenceStore
	requests requestStore
	courses  courseStore
	settings settingsStore
	tx       txManager

	ping  func(ctx context.Context) error
	close func() error
}

func openStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	switch cfg.Database.Storage {
	case config.StorageMemory:
		log.Warn("Using in-memory storage: data is lost on restart")
		return openMemory(), nil
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, m, stopCh, log)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Database.Storage)
	}
}

func openMemory() *storage {
	store := memory.NewStore()
	return &storage{
		slots:    store.Slots(),
		absences: store.Absences(),
		requests: store.Requests(),
		courses:  store.Courses(),
		settings: store.Settings(),
		tx:       store,
		ping:     func(context.Context) error { return nil },
		close:    func() error { return nil },
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	wrapped := dbmetrics.WrapWithDefault(db, m, stopCh)
	if m != nil {
		log.Info("Database metrics collection started")
	}

	return &storage{
		slots:    slotRepo.NewRepository(wrapped),
		absences: absenceRepo.NewRepository(wrapped),
		requests: makeupRepo.NewRepository(wrapped),
		courses:  courseRepo.NewRepository(wrapped),
		settings: settingsRepo.NewRepository(wrapped),
		tx:       txmanager.NewTransactionManager(wrapped),
		ping:     db.PingContext,
		close:    db.Close,
	}, nil
}
