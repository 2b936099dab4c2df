package cancel_absence

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
)

var createdAt = time.Date(2026, 4, 10, 9, 0, 0, 0, testutil.JST)

type fixture struct {
	store    *memory.Store
	notifier *testutil.Notifier
	clock    *testutil.Clock
	uc       *UseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	notifier := &testutil.Notifier{}
	clock := testutil.NewClock(createdAt)

	uc := NewUseCase(store.Absences(), store.Requests(), store.Slots(), notifier, store, logger.NewNop())
	uc.timeProvider = clock

	return &fixture{store: store, notifier: notifier, clock: clock, uc: uc}
}

func TestExecute_CancelWithinGraceCascadesToBookings(t *testing.T) {
	f := newFixture()
	original := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	target := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})

	absence := testutil.SeedAbsence(t, f.store, original, "Hanako", createdAt)
	assert.Equal(t, 7, testutil.GetSlot(t, f.store, original.ID).CapacityCurrent)

	booking := testutil.SeedBooking(t, f.store, absence, target)
	assert.Equal(t, 1, testutil.GetSlot(t, f.store, target.ID).CapacityMakeupUsed)

	f.clock.Advance(2 * time.Minute)

	resp, err := f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken})
	require.NoError(t, err)

	assert.Equal(t, string(domain.AbsenceStatusCancelled), resp.Status)
	assert.Equal(t, string(domain.CancelReasonByGuardian), resp.CancelReason)
	assert.Equal(t, []string{booking.ID}, resp.CancelledRequests)

	assert.Equal(t, 8, testutil.GetSlot(t, f.store, original.ID).CapacityCurrent)
	assert.Equal(t, 0, testutil.GetSlot(t, f.store, target.ID).CapacityMakeupUsed)

	stored := testutil.GetAbsence(t, f.store, absence.ID)
	assert.Equal(t, domain.AbsenceStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelReason)
	assert.Equal(t, domain.CancelReasonByGuardian, *stored.CancelReason)

	req := testutil.GetRequest(t, f.store, booking.ID)
	assert.Equal(t, domain.RequestStatusCancelled, req.Status)
	require.NotNil(t, req.CancelReason)
	assert.Equal(t, domain.CancelReasonAbsenceCancelled, *req.CancelReason)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, mailer.KindAbsenceCancelled, sent[0].Kind)
	assert.Equal(t, "guardian@example.com", sent[0].To)
}

func TestExecute_GracePeriodBoundary(t *testing.T) {
	tests := []struct {
		name        string
		elapsed     time.Duration
		refill      bool // место в исходном слоте снова занято
		wantErr     error
		wantCurrent int
	}{
		{name: "exactly ten minutes, slot refilled", elapsed: 10 * time.Minute, refill: true, wantCurrent: 10},
		{name: "ten minutes and one second, slot refilled", elapsed: 10*time.Minute + time.Second, refill: true, wantErr: ErrLateCancellation, wantCurrent: 10},
		{name: "ten minutes and one second, seat still free", elapsed: 10*time.Minute + time.Second, wantCurrent: 10},
		{name: "one day later, seat still free", elapsed: 24 * time.Hour, wantCurrent: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			slot := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 10})
			absence := testutil.SeedAbsence(t, f.store, slot, "Taro", createdAt)

			if tt.refill {
				require.NoError(t, f.store.Slots().UpdateCounters(context.Background(), slot.ID, 10, 0))
			}

			f.clock.Advance(tt.elapsed)

			_, err := f.uc.Execute(context.Background(), &Request{AbsenceID: absence.ID, ConfirmCode: absence.ConfirmCode})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.AbsenceStatusPending, testutil.GetAbsence(t, f.store, absence.ID).Status)
				assert.Empty(t, f.notifier.Sent())
			} else {
				require.NoError(t, err)
				assert.Equal(t, domain.AbsenceStatusCancelled, testutil.GetAbsence(t, f.store, absence.ID).Status)
			}

			current := testutil.GetSlot(t, f.store, slot.ID)
			assert.Equal(t, tt.wantCurrent, current.CapacityCurrent)
			assert.LessOrEqual(t, current.CapacityCurrent, current.CapacityLimit)
		})
	}
}

func TestExecute_AdminCancelDoesNotNeedCode(t *testing.T) {
	f := newFixture()
	slot := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, f.store, slot, "Hanako", createdAt)

	resp, err := f.uc.Execute(context.Background(), &Request{AbsenceID: absence.ID, ByAdmin: true})
	require.NoError(t, err)

	assert.Equal(t, string(domain.CancelReasonByAdmin), resp.CancelReason)
	assert.Empty(t, resp.CancelledRequests)
	assert.Equal(t, 8, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture()
	slot := testutil.SeedSlot(t, f.store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, f.store, slot, "Hanako", createdAt)

	_, err := f.uc.Execute(context.Background(), &Request{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{AbsenceID: absence.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: "unknown"})
	require.ErrorIs(t, err, ErrAbsenceNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{AbsenceID: absence.ID, ConfirmCode: "000000"})
	require.ErrorIs(t, err, ErrAbsenceNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{AbsenceID: "missing", ByAdmin: true})
	require.ErrorIs(t, err, ErrAbsenceNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken})
	require.NoError(t, err)

	// повторная отмена по той же ссылке
	_, err = f.uc.Execute(context.Background(), &Request{ResumeToken: absence.ResumeToken})
	require.ErrorIs(t, err, ErrAlreadyCancelled)

	assert.Equal(t, 8, testutil.GetSlot(t, f.store, slot.ID).CapacityCurrent)
}
