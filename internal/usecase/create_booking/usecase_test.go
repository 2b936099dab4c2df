package create_booking

import (
	"context"
	"fmt"
	"sync"
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

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, testutil.JST)

type fixture struct {
	store    *memory.Store
	notifier *testutil.Notifier
	clock    *testutil.Clock
	uc       *UseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	notifier := &testutil.Notifier{}
	clock := testutil.NewClock(now)

	uc := NewUseCase(
		store.Absences(),
		store.Requests(),
		store.Slots(),
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

func TestExecute_CapacitySequence(t *testing.T) {
	f := newFixture()
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 20, Current: 15})
	target := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})
	assert.Equal(t, "open, 2 remaining", target.Capacity().Label())

	first := testutil.SeedAbsence(t, f.store, original, "Hanako", now)
	second := testutil.SeedAbsence(t, f.store, original, "Taro", now)
	third := testutil.SeedAbsence(t, f.store, original, "Jiro", now)

	resp, err := f.uc.Execute(context.Background(), &Request{ResumeToken: first.ResumeToken, SlotID: target.ID})
	require.NoError(t, err)
	assert.Equal(t, "low, 1 remaining", resp.Label)
	assert.Equal(t, 1, testutil.GetSlot(t, f.store, target.ID).CapacityMakeupUsed)

	resp, err = f.uc.Execute(context.Background(), &Request{AbsenceID: second.ID, ConfirmCode: second.ConfirmCode, SlotID: target.ID})
	require.NoError(t, err)
	assert.Equal(t, "full", resp.Label)
	assert.Equal(t, domain.AvailabilityFull, resp.Level)

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: third.ResumeToken, SlotID: target.ID})
	require.ErrorIs(t, err, ErrSlotFull)

	slot := testutil.GetSlot(t, f.store, target.ID)
	assert.Equal(t, 8, slot.CapacityCurrent)
	assert.Equal(t, 2, slot.CapacityMakeupUsed)

	assert.Equal(t, domain.AbsenceStatusMakeupConfirmed, testutil.GetAbsence(t, f.store, first.ID).Status)
	assert.Equal(t, domain.AbsenceStatusMakeupConfirmed, testutil.GetAbsence(t, f.store, second.ID).Status)
	assert.Equal(t, domain.AbsenceStatusPending, testutil.GetAbsence(t, f.store, third.ID).Status)

	requests, err := f.store.Requests().ListBySlot(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}

func TestExecute_LinkedBookingCopiesAbsenceAndNotifies(t *testing.T) {
	f := newFixture()
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	target := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Label: "Thursday kids", Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, f.store, original, "Hanako", now)

	resp, err := f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: target.ID})
	require.NoError(t, err)

	req := testutil.GetRequest(t, f.store, resp.RequestID)
	require.NotNil(t, req.AbsenceID)
	assert.Equal(t, absence.ID, *req.AbsenceID)
	assert.Equal(t, "Hanako", req.ChildName)
	assert.Equal(t, absence.ConfirmCode, ptr.Deref(req.ConfirmCode, ""))
	assert.Equal(t, target.StartsAt, req.SlotStartsAt)
	assert.Equal(t, domain.RequestStatusConfirmed, req.Status)
	assert.NotEqual(t, req.CancelToken, req.DeclineToken)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, mailer.KindMakeupConfirmed, sent[0].Kind)
	assert.Equal(t, resp.CancelToken, sent[0].Payload.CancelToken)
	assert.Equal(t, resp.DeclineToken, sent[0].Payload.DeclineToken)
	assert.Equal(t, "Thursday kids", sent[0].Payload.CourseLabel)
}

func TestExecute_DuplicateChildRejected(t *testing.T) {
	f := newFixture()
	target := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 5})

	admin := &Request{ByAdmin: true, ChildName: "Hanako", ClassBand: domain.ClassBandBeginner, SlotID: target.ID}

	resp, err := f.uc.Execute(context.Background(), admin)
	require.NoError(t, err)
	assert.Nil(t, resp.AbsenceID)
	require.NotNil(t, resp.ConfirmCode)
	assert.Len(t, *resp.ConfirmCode, 6)

	again := &Request{ByAdmin: true, ChildName: " Hanako ", ClassBand: domain.ClassBandBeginner, SlotID: target.ID}
	_, err = f.uc.Execute(context.Background(), again)
	require.ErrorIs(t, err, ErrDuplicateBooking)

	assert.Equal(t, 1, testutil.GetSlot(t, f.store, target.ID).CapacityMakeupUsed)
	assert.Empty(t, f.notifier.Sent())
}

func TestExecute_AbsenceGuards(t *testing.T) {
	f := newFixture()
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	target := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})
	other := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 18), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, f.store, original, "Hanako", now)

	_, err := f.uc.Execute(context.Background(), &Request{AbsenceID: absence.ID, ConfirmCode: "999999", SlotID: target.ID})
	require.ErrorIs(t, err, ErrAbsenceNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: original.ID})
	require.ErrorIs(t, err, ErrOriginalSlot)

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: target.ID})
	require.NoError(t, err)

	// у пропуска уже есть подтвержденная отработка
	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: other.ID})
	require.ErrorIs(t, err, ErrAlreadyBooked)
	assert.Equal(t, 0, testutil.GetSlot(t, f.store, other.ID).CapacityMakeupUsed)

	require.NoError(t, f.store.Absences().UpdateStatus(context.Background(), absence.ID,
		domain.AbsenceStatusCancelled, ptr.Ptr(domain.CancelReasonByGuardian), now))

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: other.ID})
	require.ErrorIs(t, err, ErrAbsenceCancelled)
}

func TestExecute_DeadlineAndWindow(t *testing.T) {
	f := newFixture()
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, f.store, original, "Hanako", now)

	// 15.04 + 30 дней = 15.05, окно до 15.05 включительно
	outside := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 5, 16), Limit: 10, Current: 8})
	late := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 5, 20), Limit: 10, Current: 8})

	_, err := f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: outside.ID})
	require.ErrorIs(t, err, ErrOutsideWindow)

	// срок истек: 16.05 00:00 по Токио
	f.clock.Advance(time.Date(2026, 5, 16, 0, 0, 0, 0, testutil.JST).Sub(now))

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken, SlotID: late.ID})
	require.ErrorIs(t, err, ErrDeadlinePassed)

	// администратор может записать после срока и вне окна, но не в прошлое
	resp, err := f.uc.Execute(context.Background(), &Request{AbsenceID: absence.ID, ByAdmin: true, SlotID: late.ID})
	require.NoError(t, err)
	assert.Equal(t, late.ID, resp.SlotID)
}

func TestExecute_SlotRejections(t *testing.T) {
	f := newFixture()
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	advanced := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Band: domain.ClassBandAdvanced, Limit: 10, Current: 8})
	started := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 10), Start: "09:00", Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, f.store, original, "Hanako", now)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "no slot", req: &Request{ResumeToken: absence.ResumeToken}, wantErr: ErrInvalidInput},
		{name: "no access", req: &Request{SlotID: advanced.ID}, wantErr: ErrInvalidInput},
		{name: "admin without child", req: &Request{ByAdmin: true, SlotID: advanced.ID, ClassBand: domain.ClassBandAdvanced}, wantErr: ErrInvalidInput},
		{name: "unknown token", req: &Request{ResumeToken: "nope", SlotID: advanced.ID}, wantErr: ErrAbsenceNotFound},
		{name: "unknown slot", req: &Request{ResumeToken: absence.ResumeToken, SlotID: "missing"}, wantErr: ErrSlotNotFound},
		{name: "band mismatch", req: &Request{ResumeToken: absence.ResumeToken, SlotID: advanced.ID}, wantErr: ErrClassBandMismatch},
		{name: "lesson started", req: &Request{ResumeToken: absence.ResumeToken, SlotID: started.ID}, wantErr: ErrSlotAlreadyStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, domain.AbsenceStatusPending, testutil.GetAbsence(t, f.store, absence.ID).Status)
}

func TestExecute_ConcurrentBookingsNeverOverbook(t *testing.T) {
	f := newFixture()
	target := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})

	const attempts = 10

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		full    int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), &Request{
				ByAdmin:   true,
				ChildName: fmt.Sprintf("child-%d", i),
				ClassBand: domain.ClassBandBeginner,
				SlotID:    target.ID,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(t, err, ErrSlotFull):
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, success)
	assert.Equal(t, attempts-2, full)

	slot := testutil.GetSlot(t, f.store, target.ID)
	assert.Equal(t, 2, slot.CapacityMakeupUsed)
	assert.Equal(t, 0, slot.Capacity().Remaining)
}
