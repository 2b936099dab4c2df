package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/service/bookings/models"
	"github.com/m04kA/kesseki-furikae/internal/testutil"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
)

func TestService_GetAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Requests(), logger.NewNop())

	original := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	friday := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})
	saturday := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 18), Limit: 10, Current: 8})

	absence := testutil.SeedAbsence(t, store, original, "Hanako", time.Now())
	linked := testutil.SeedBooking(t, store, absence, friday)
	guest := testutil.SeedGuestBooking(t, store, saturday, "Guest")
	require.NoError(t, store.Requests().MarkCancelled(ctx, guest.ID, domain.CancelReasonByAdmin, time.Now()))

	got, err := svc.GetByID(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hanako", got.ChildName)
	require.NotNil(t, got.AbsentDate)
	assert.Equal(t, "2026-04-15", *got.AbsentDate)
	assert.Nil(t, got.CancelReason)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrBookingNotFound)

	all, err := svc.List(ctx, &models.ListBookingsRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	assert.Equal(t, linked.ID, all.Bookings[0].ID)
	assert.Equal(t, guest.ID, all.Bookings[1].ID)
	require.NotNil(t, all.Bookings[1].CancelReason)
	assert.Equal(t, "cancelled_by_admin", *all.Bookings[1].CancelReason)
	assert.NotNil(t, all.Bookings[1].CancelledAt)

	confirmed, err := svc.List(ctx, &models.ListBookingsRequest{Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)
	require.Len(t, confirmed.Bookings, 1)
	assert.Equal(t, linked.ID, confirmed.Bookings[0].ID)

	from := time.Date(2026, 4, 18, 0, 0, 0, 0, testutil.JST)
	to := from.AddDate(0, 0, 1)
	period, err := svc.List(ctx, &models.ListBookingsRequest{StartDate: &from, EndDate: &to})
	require.NoError(t, err)
	require.Len(t, period.Bookings, 1)
	assert.Equal(t, guest.ID, period.Bookings[0].ID)

	_, err = svc.List(ctx, &models.ListBookingsRequest{StartDate: &to, EndDate: &from})
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.List(ctx, &models.ListBookingsRequest{Status: ptr.Ptr("pending")})
	require.ErrorIs(t, err, ErrInvalidInput)
}
