// Package testutil общие заглушки для тестов usecase/service/handler пакетов
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// JST зона школы в тестах
var JST = time.FixedZone("JST", 9*3600)

// Clock управляемые часы
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, показывающие now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now текущее время часов
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает часы вперед
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Notification записанный вызов Notify
type Notification struct {
	Kind    mailer.Kind
	To      string
	Payload mailer.Payload
}

// Notifier запоминает уведомления вместо отправки
type Notifier struct {
	mu   sync.Mutex
	sent []Notification
}

// Notify записывает уведомление
func (n *Notifier) Notify(_ context.Context, kind mailer.Kind, to string, payload mailer.Payload) {
	n.mu.Lock()
	n.sent = append(n.sent, Notification{Kind: kind, To: to, Payload: payload})
	n.mu.Unlock()
}

// Sent возвращает копию записанных уведомлений
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Settings провайдер фиксированных настроек
type Settings struct {
	Value domain.Settings
}

// Current возвращает настройки
func (s Settings) Current(context.Context) (domain.Settings, error) {
	return s.Value, nil
}

// Date дата без времени
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SlotSeed параметры тестового слота
type SlotSeed struct {
	Date       time.Time
	Start      string
	Band       domain.ClassBand
	Label      string
	Limit      int
	Current    int
	MakeupUsed int
}

// SeedSlot создает слот в хранилище
func SeedSlot(t *testing.T, store *memory.Store, seed SlotSeed) *domain.Slot {
	t.Helper()

	if seed.Band == "" {
		seed.Band = domain.ClassBandBeginner
	}
	if seed.Start == "" {
		seed.Start = "16:00"
	}

	slot := &domain.Slot{
		LessonDate:         domain.DateOnly(seed.Date),
		StartTime:          types.MustTimeString(seed.Start),
		CourseLabel:        seed.Label,
		ClassBand:          seed.Band,
		CapacityLimit:      seed.Limit,
		CapacityCurrent:    seed.Current,
		CapacityMakeupUsed: seed.MakeupUsed,
	}
	slot.ComputeStartsAt(JST)

	created, err := store.Slots().Create(context.Background(), slot)
	require.NoError(t, err)
	return created
}

// GetSlot перечитывает слот
func GetSlot(t *testing.T, store *memory.Store, id string) *domain.Slot {
	t.Helper()

	slot, err := store.Slots().GetByID(context.Background(), id)
	require.NoError(t, err)
	return slot
}

// SeedAbsence создает ожидающий пропуск для слота и уменьшает его capacity_current
func SeedAbsence(t *testing.T, store *memory.Store, slot *domain.Slot, childName string, createdAt time.Time) *domain.Absence {
	t.Helper()

	ctx := context.Background()
	email := "guardian@example.com"

	absence := &domain.Absence{
		ChildName:      childName,
		ClassBand:      slot.ClassBand,
		AbsentDate:     slot.LessonDate,
		OriginalSlotID: slot.ID,
		ContactEmail:   &email,
		ResumeToken:    "resume-" + childName + "-" + slot.ID,
		ConfirmCode:    "123456",
		MakeupDeadline: domain.DefaultSettings().MakeupDeadline(slot.LessonDate),
		Status:         domain.AbsenceStatusPending,
		CreatedAt:      createdAt,
	}
	created, err := store.Absences().Create(ctx, absence)
	require.NoError(t, err)

	current := GetSlot(t, store, slot.ID)
	require.NoError(t, current.ReleaseEnrolledSeat())
	require.NoError(t, store.Slots().UpdateCounters(ctx, current.ID, current.CapacityCurrent, current.CapacityMakeupUsed))

	return created
}

// SeedBooking создает подтвержденную заявку пропуска на слот, занимая место отработки
func SeedBooking(t *testing.T, store *memory.Store, absence *domain.Absence, slot *domain.Slot) *domain.MakeupRequest {
	t.Helper()

	ctx := context.Background()
	current := GetSlot(t, store, slot.ID)
	require.NoError(t, current.ReserveMakeupSeat())
	require.NoError(t, store.Slots().UpdateCounters(ctx, current.ID, current.CapacityCurrent, current.CapacityMakeupUsed))

	absentDate := absence.AbsentDate
	code := absence.ConfirmCode
	req := &domain.MakeupRequest{
		AbsenceID:    &absence.ID,
		ChildName:    absence.ChildName,
		ClassBand:    absence.ClassBand,
		AbsentDate:   &absentDate,
		SlotID:       slot.ID,
		SlotStartsAt: slot.StartsAt,
		Status:       domain.RequestStatusConfirmed,
		ContactEmail: absence.ContactEmail,
		CancelToken:  "cancel-" + uuid.NewString(),
		DeclineToken: "decline-" + uuid.NewString(),
		ConfirmCode:  &code,
	}
	created, err := store.Requests().Create(ctx, req)
	require.NoError(t, err)

	require.NoError(t, store.Absences().UpdateStatus(ctx, absence.ID, domain.AbsenceStatusMakeupConfirmed, nil, time.Now()))

	return created
}

// GetAbsence перечитывает пропуск
func GetAbsence(t *testing.T, store *memory.Store, id string) *domain.Absence {
	t.Helper()

	absence, err := store.Absences().GetByID(context.Background(), id)
	require.NoError(t, err)
	return absence
}

// GetRequest перечитывает заявку
func GetRequest(t *testing.T, store *memory.Store, id string) *domain.MakeupRequest {
	t.Helper()

	req, err := store.Requests().GetByID(context.Background(), id)
	require.NoError(t, err)
	return req
}

// SeedGuestBooking создает подтвержденную заявку без пропуска (запись администратором)
func SeedGuestBooking(t *testing.T, store *memory.Store, slot *domain.Slot, childName string) *domain.MakeupRequest {
	t.Helper()

	ctx := context.Background()
	current := GetSlot(t, store, slot.ID)
	require.NoError(t, current.ReserveMakeupSeat())
	require.NoError(t, store.Slots().UpdateCounters(ctx, current.ID, current.CapacityCurrent, current.CapacityMakeupUsed))

	req := &domain.MakeupRequest{
		ChildName:    childName,
		ClassBand:    slot.ClassBand,
		SlotID:       slot.ID,
		SlotStartsAt: slot.StartsAt,
		Status:       domain.RequestStatusConfirmed,
		CancelToken:  "cancel-" + uuid.NewString(),
		DeclineToken: "decline-" + uuid.NewString(),
	}
	created, err := store.Requests().Create(ctx, req)
	require.NoError(t, err)

	return created
}
