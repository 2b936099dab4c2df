package create_absence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
	"github.com/m04kA/kesseki-furikae/internal/testutil"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
	"github.com/m04kA/kesseki-furikae/pkg/tokengen"
)

type fixture struct {
	store    *memory.Store
	notifier *testutil.Notifier
	clock    *testutil.Clock
	uc       *UseCase
}

func newFixture(now time.Time) *fixture {
	store := memory.NewStore()
	notifier := &testutil.Notifier{}
	clock := testutil.NewClock(now)

	uc := NewUseCase(
		store.Slots(),
		store.Absences(),
		testutil.Settings{Value: domain.Settings{MakeupWindowDays: 30}},
		tokengen.New(),
		notifier,
		store,
		testutil.JST,
		logger.NewNop(),
	)
	uc.timeProvider = clock

	return &fixture{store: store, notifier: notifier, clock: clock, uc: uc}
}

func TestExecute_ReleasesEnrolledSeat(t *testing.T) {
	f := newFixture(time.Date(2026, 4, 14, 9, 0, 0, 0, testutil.JST))
	slot := testutil.SeedSlot(t, f.store, testutil.SlotSeed{
		Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8,
	})

	resp, err := f.uc.Execute(context.Background(), &Request{
		ChildName:      " Hanako ",
		ClassBand:      domain.ClassBandBeginner,
		AbsentDate:     testutil.Date(2026, 4, 15),
		OriginalSlotID: slot.ID,
		ContactEmail:   ptr.Ptr("parent@example.com"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AbsenceID)
	assert.Len(t, resp.ResumeToken, 43)
	assert.Regexp(t, `^\d{6}$`, resp.ConfirmCode)
	assert.Equal(t, testutil.Date(2026, 5, 15), resp.MakeupDeadline)
	assert.Equal(t, string(domain.AbsenceStatusPending), resp.Status)

	assert.Equal(t, 7, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)

	absence, err := f.store.Absences().GetByID(context.Background(), resp.AbsenceID)
	require.NoError(t, err)
	assert.Equal(t, "Hanako", absence.ChildName)
	assert.Equal(t, f.clock.Now(), absence.CreatedAt)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, mailer.KindAbsenceConfirmed, sent[0].Kind)
	assert.Equal(t, resp.ResumeToken, sent[0].Payload.ResumeToken)
}

func TestExecute_WithoutEmailSkipsNotification(t *testing.T) {
	f := newFixture(time.Date(2026, 4, 14, 9, 0, 0, 0, testutil.JST))
	slot := testutil.SeedSlot(t, f.store, testutil.SlotSeed{
		Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8,
	})

	_, err := f.uc.Execute(context.Background(), &Request{
		ChildName:      "Taro",
		ClassBand:      domain.ClassBandBeginner,
		AbsentDate:     testutil.Date(2026, 4, 15),
		OriginalSlotID: slot.ID,
		ContactEmail:   ptr.Ptr("  "),
	})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Sent())
}

func TestExecute_Rejections(t *testing.T) {
	now := time.Date(2026, 4, 15, 16, 30, 0, 0, testutil.JST)

	tests := []struct {
		name    string
		seed    testutil.SlotSeed
		mutate  func(req *Request)
		wantErr error
	}{
		{
			name:    "date mismatch",
			seed:    testutil.SlotSeed{Date: testutil.Date(2026, 4, 16), Limit: 10, Current: 8},
			wantErr: ErrDateMismatch,
		},
		{
			name:    "class band mismatch",
			seed:    testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "18:00", Band: domain.ClassBandAdvanced, Limit: 10, Current: 8},
			wantErr: ErrClassBandMismatch,
		},
		{
			name:    "lesson already started",
			seed:    testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "16:30", Limit: 10, Current: 8},
			wantErr: ErrSlotAlreadyStarted,
		},
		{
			name:    "no enrolled students",
			seed:    testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "18:00", Limit: 10, Current: 0},
			wantErr: ErrNoEnrolledSeat,
		},
		{
			name:    "unknown slot",
			seed:    testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "18:00", Limit: 10, Current: 8},
			mutate:  func(req *Request) { req.OriginalSlotID = "missing" },
			wantErr: ErrSlotNotFound,
		},
		{
			name:    "bad email",
			seed:    testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Start: "18:00", Limit: 10, Current: 8},
			mutate:  func(req *Request) { req.ContactEmail = ptr.Ptr("not-an-email") },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(now)
			slot := testutil.SeedSlot(t, f.store, tt.seed)

			req := &Request{
				ChildName:      "Hanako",
				ClassBand:      domain.ClassBandBeginner,
				AbsentDate:     testutil.Date(2026, 4, 15),
				OriginalSlotID: slot.ID,
			}
			if tt.mutate != nil {
				tt.mutate(req)
			}

			_, err := f.uc.Execute(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, tt.seed.Current, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)
			absences, err := f.store.Absences().List(context.Background(), domain.AbsenceFilter{})
			require.NoError(t, err)
			assert.Empty(t, absences)
		})
	}
}

func TestExecute_RejectsRepeatedAbsenceForSameChild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Date(2026, 4, 14, 9, 0, 0, 0, testutil.JST))
	slot := testutil.SeedSlot(t, f.store, testutil.SlotSeed{
		Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8,
	})

	request := func(childName string) *Request {
		return &Request{
			ChildName:      childName,
			ClassBand:      domain.ClassBandBeginner,
			AbsentDate:     testutil.Date(2026, 4, 15),
			OriginalSlotID: slot.ID,
		}
	}

	first, err := f.uc.Execute(ctx, request("Hanako"))
	require.NoError(t, err)

	// Повторная отправка формы: место освобождается только один раз
	_, err = f.uc.Execute(ctx, request(" Hanako "))
	require.ErrorIs(t, err, ErrDuplicateAbsence)
	assert.Equal(t, 7, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)

	// Другой ребенок на том же слоте не затронут
	_, err = f.uc.Execute(ctx, request("Taro"))
	require.NoError(t, err)
	assert.Equal(t, 6, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)

	// После отмены пропуск можно зарегистрировать заново
	require.NoError(t, f.store.Absences().UpdateStatus(ctx, first.AbsenceID,
		domain.AbsenceStatusCancelled, ptr.Ptr(domain.CancelReasonByGuardian), f.clock.Now()))

	_, err = f.uc.Execute(ctx, request("Hanako"))
	require.NoError(t, err)
	assert.Equal(t, 5, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)

	absences, err := f.store.Absences().List(ctx, domain.AbsenceFilter{OriginalSlotID: ptr.Ptr(slot.ID)})
	require.NoError(t, err)
	assert.Len(t, absences, 3)
}
