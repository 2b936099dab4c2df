package absences

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/service/absences/models"
	"github.com/m04kA/kesseki-furikae/internal/testutil"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
)

type fixture struct {
	store    *memory.Store
	svc      *Service
	original *domain.Slot
	target   *domain.Slot
	absence  *domain.Absence
	booking  *domain.MakeupRequest
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	f := &fixture{
		store: store,
		svc:   NewService(store.Absences(), store.Requests(), store.Slots(), logger.NewNop()),
	}

	f.original = testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Label: "Wed", Limit: 10, Current: 8})
	f.target = testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Label: "Fri", Limit: 10, Current: 8})
	f.absence = testutil.SeedAbsence(t, store, f.original, "Hanako", time.Now())
	f.booking = testutil.SeedBooking(t, store, f.absence, f.target)

	return f
}

func TestGetByResumeToken(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetByResumeToken(context.Background(), f.absence.ResumeToken)
	require.NoError(t, err)

	assert.Equal(t, f.absence.ID, resp.ID)
	assert.Equal(t, string(domain.AbsenceStatusMakeupConfirmed), resp.Status)
	assert.Equal(t, "2026-04-15", resp.AbsentDate)
	assert.Equal(t, "2026-05-15", resp.MakeupDeadline)
	require.NotNil(t, resp.OriginalSlot)
	assert.Equal(t, "Wed", resp.OriginalSlot.CourseLabel)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, f.booking.ID, resp.Requests[0].ID)
	assert.Equal(t, f.target.ID, resp.Requests[0].SlotID)

	_, err = f.svc.GetByResumeToken(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrAbsenceNotFound)

	_, err = f.svc.GetByResumeToken(context.Background(), " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetByResumeToken_OriginalSlotDeleted(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Slots().Delete(context.Background(), f.original.ID))

	resp, err := f.svc.GetByResumeToken(context.Background(), f.absence.ResumeToken)
	require.NoError(t, err)
	assert.Nil(t, resp.OriginalSlot)
	assert.Equal(t, f.original.ID, resp.OriginalSlotID)
}

func TestLookupByConfirmCode(t *testing.T) {
	f := newFixture(t)
	other := testutil.SeedAbsence(t, f.store, f.original, "Taro", time.Now())

	code := "123456"
	_, err := f.store.Requests().Create(context.Background(), &domain.MakeupRequest{
		ChildName:    "Guest",
		ClassBand:    domain.ClassBandBeginner,
		SlotID:       f.target.ID,
		SlotStartsAt: f.target.StartsAt,
		Status:       domain.RequestStatusConfirmed,
		CancelToken:  "cancel-guest",
		DeclineToken: "decline-guest",
		ConfirmCode:  &code,
	})
	require.NoError(t, err)

	t.Run("by child name", func(t *testing.T) {
		resp, err := f.svc.LookupByConfirmCode(context.Background(), &models.LookupRequest{Code: code, ChildName: " hanako "})
		require.NoError(t, err)
		require.Len(t, resp.Absences, 1)
		assert.Equal(t, f.absence.ID, resp.Absences[0].ID)
		assert.Empty(t, resp.Bookings)
	})

	t.Run("code only", func(t *testing.T) {
		resp, err := f.svc.LookupByConfirmCode(context.Background(), &models.LookupRequest{Code: code})
		require.NoError(t, err)

		ids := []string{}
		for _, a := range resp.Absences {
			ids = append(ids, a.ID)
		}
		assert.ElementsMatch(t, []string{f.absence.ID, other.ID}, ids)
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, "Guest", resp.Bookings[0].ChildName)
	})

	t.Run("no match", func(t *testing.T) {
		resp, err := f.svc.LookupByConfirmCode(context.Background(), &models.LookupRequest{Code: "654321"})
		require.NoError(t, err)
		assert.Empty(t, resp.Absences)
		assert.Empty(t, resp.Bookings)
	})

	for _, bad := range []string{"", "12345", "12345a", "1234567"} {
		_, err := f.svc.LookupByConfirmCode(context.Background(), &models.LookupRequest{Code: bad})
		require.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	testutil.SeedAbsence(t, f.store, f.target, "Taro", time.Now())

	all, err := f.svc.List(context.Background(), &models.ListAbsencesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	pending, err := f.svc.List(context.Background(), &models.ListAbsencesRequest{Status: ptr.Ptr("pending")})
	require.NoError(t, err)
	require.Len(t, pending.Absences, 1)
	assert.Equal(t, "Taro", pending.Absences[0].ChildName)

	from := testutil.Date(2026, 4, 16)
	later, err := f.svc.List(context.Background(), &models.ListAbsencesRequest{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, later.Absences, 1)
	assert.Equal(t, "2026-04-17", later.Absences[0].AbsentDate)

	_, err = f.svc.List(context.Background(), &models.ListAbsencesRequest{Status: ptr.Ptr("expired")})
	require.ErrorIs(t, err, ErrInvalidInput)
}
