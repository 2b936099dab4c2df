package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

type txKey struct{}

// Store хранилище в памяти для dev-режима (storage = "memory") и тестов
// Реализует все репозитории и менеджер транзакций.
// Все операции сериализованы одним мьютексом, транзакция держит его до конца
// и при ошибке откатывает данные к снимку.
type Store struct {
	mu sync.Mutex

	slots    map[string]domain.Slot
	absences map[string]domain.Absence
	requests map[string]domain.MakeupRequest
	courses  map[string]domain.Course
	settings *domain.Settings
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		slots:    make(map[string]domain.Slot),
		absences: make(map[string]domain.Absence),
		requests: make(map[string]domain.MakeupRequest),
		courses:  make(map[string]domain.Course),
	}
}

// Do выполняет fn атомарно: при ошибке все изменения откатываются
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// lock захватывает мьютекс, если вызов идет не из транзакции этого хранилища
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

type snapshot struct {
	slots    map[string]domain.Slot
	absences map[string]domain.Absence
	requests map[string]domain.MakeupRequest
	courses  map[string]domain.Course
	settings *domain.Settings
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		slots:    make(map[string]domain.Slot, len(s.slots)),
		absences: make(map[string]domain.Absence, len(s.absences)),
		requests: make(map[string]domain.MakeupRequest, len(s.requests)),
		courses:  make(map[string]domain.Course, len(s.courses)),
	}
	for k, v := range s.slots {
		snap.slots[k] = v
	}
	for k, v := range s.absences {
		snap.absences[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	for k, v := range s.courses {
		snap.courses[k] = v
	}
	if s.settings != nil {
		settings := *s.settings
		snap.settings = &settings
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.slots = snap.slots
	s.absences = snap.absences
	s.requests = snap.requests
	s.courses = snap.courses
	s.settings = snap.settings
}

// Slots репозиторий слотов
func (s *Store) Slots() *SlotRepository { return &SlotRepository{store: s} }

// Absences репозиторий пропусков
func (s *Store) Absences() *AbsenceRepository { return &AbsenceRepository{store: s} }

// Requests репозиторий заявок на отработку
func (s *Store) Requests() *RequestRepository { return &RequestRepository{store: s} }

// Courses репозиторий курсов
func (s *Store) Courses() *CourseRepository { return &CourseRepository{store: s} }

// Settings репозиторий настроек
func (s *Store) Settings() *SettingsRepository { return &SettingsRepository{store: s} }

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
