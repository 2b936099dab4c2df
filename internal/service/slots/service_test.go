package slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/service/slots/models"
	"github.com/m04kA/kesseki-furikae/internal/testutil"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

func newService(store *memory.Store) *Service {
	return NewService(store.Slots(), store.Absences(), store.Requests(), store.Courses(), store, testutil.JST, logger.NewNop())
}

func TestCreate(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	req := &models.CreateSlotRequest{
		LessonDate: "2026-04-15", StartTime: "16:00", ClassBand: "Beginner",
		CourseLabel: " Wed kids ", CapacityLimit: 10, CapacityCurrent: 8,
	}

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "beginner", resp.ClassBand)
	assert.Equal(t, "Wed kids", resp.CourseLabel)
	assert.Equal(t, time.Date(2026, 4, 15, 16, 0, 0, 0, testutil.JST).Unix(), resp.StartsAt.Unix())
	assert.Equal(t, "open, 2 remaining", resp.Label)

	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrDuplicateSlot)

	bad := *req
	bad.CapacityCurrent = 11
	_, err = svc.Create(context.Background(), &bad)
	require.ErrorIs(t, err, ErrInvalidInput)

	bad = *req
	bad.StartTime = "4pm"
	_, err = svc.Create(context.Background(), &bad)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateRecurring_IsIdempotent(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	req := func() *models.CreateRecurringRequest {
		return &models.CreateRecurringRequest{
			StartDate:       "2026-04-15",
			Weeks:           4,
			StartTimes:      []string{"16:00", "17:30"},
			ClassBands:      []string{"beginner", "advanced"},
			CourseLabel:     "Wed",
			CapacityLimit:   10,
			CapacityCurrent: 8,
		}
	}

	first, err := svc.CreateRecurring(context.Background(), req())
	require.NoError(t, err)
	assert.Len(t, first.Created, 16)
	assert.Empty(t, first.Skipped)

	second, err := svc.CreateRecurring(context.Background(), req())
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, first.Created, second.Skipped)

	all, err := store.Slots().List(context.Background(), domain.SlotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 16)
	for _, slot := range all {
		assert.Equal(t, time.Wednesday, slot.LessonDate.Weekday())
	}
}

func TestCreateRecurring_PrefillsFromCourse(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	course, err := store.Courses().Create(context.Background(), &domain.Course{
		Label:         "Saturday advanced",
		Weekday:       time.Saturday,
		StartTime:     types.MustTimeString("10:00"),
		ClassBand:     domain.ClassBandAdvanced,
		CapacityLimit: 12,
		IsActive:      true,
	})
	require.NoError(t, err)

	resp, err := svc.CreateRecurring(context.Background(), &models.CreateRecurringRequest{
		StartDate:       "2026-04-18",
		Weeks:           2,
		CourseID:        &course.ID,
		CapacityCurrent: 9,
	})
	require.NoError(t, err)
	require.Len(t, resp.Created, 2)

	slot := testutil.GetSlot(t, store, resp.Created[0])
	assert.Equal(t, "Saturday advanced", slot.CourseLabel)
	assert.Equal(t, domain.ClassBandAdvanced, slot.ClassBand)
	assert.Equal(t, "10:00", slot.StartTime.String())
	assert.Equal(t, 12, slot.CapacityLimit)

	_, err = svc.CreateRecurring(context.Background(), &models.CreateRecurringRequest{
		StartDate: "2026-04-18", Weeks: 1, CourseID: ptr.Ptr("missing"),
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUpdate_TimeChangeResyncsBookings(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	original := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	target := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, store, original, "Hanako", time.Now())
	booking := testutil.SeedBooking(t, store, absence, target)

	resp, err := svc.Update(context.Background(), target.ID, &models.UpdateSlotRequest{
		LessonDate: ptr.Ptr("2026-04-18"),
		StartTime:  ptr.Ptr("10:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.RequestsResynced)

	want := time.Date(2026, 4, 18, 10, 30, 0, 0, testutil.JST)
	assert.True(t, testutil.GetSlot(t, store, target.ID).StartsAt.Equal(want))
	assert.True(t, testutil.GetRequest(t, store, booking.ID).SlotStartsAt.Equal(want))

	// перенос на занятый (дата, время, уровень)
	_, err = svc.Update(context.Background(), target.ID, &models.UpdateSlotRequest{
		LessonDate: ptr.Ptr("2026-04-15"),
		StartTime:  ptr.Ptr("16:00"),
	})
	require.ErrorIs(t, err, ErrDuplicateSlot)
}

func TestUpdate_Guards(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	original := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	target := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, store, original, "Hanako", time.Now())
	testutil.SeedBooking(t, store, absence, target)

	_, err := svc.Update(context.Background(), original.ID, &models.UpdateSlotRequest{ClassBand: ptr.Ptr("advanced")})
	require.ErrorIs(t, err, ErrSlotInUse)

	// одна подтвержденная отработка требует хотя бы одно освобожденное место
	_, err = svc.Update(context.Background(), target.ID, &models.UpdateSlotRequest{CapacityCurrent: ptr.Ptr(10)})
	require.ErrorIs(t, err, ErrCapacityConflict)

	_, err = svc.Update(context.Background(), target.ID, &models.UpdateSlotRequest{CapacityLimit: ptr.Ptr(8)})
	require.ErrorIs(t, err, ErrCapacityConflict)

	_, err = svc.Update(context.Background(), "missing", &models.UpdateSlotRequest{CapacityLimit: ptr.Ptr(8)})
	require.ErrorIs(t, err, ErrSlotNotFound)

	slot := testutil.GetSlot(t, store, target.ID)
	assert.Equal(t, 10, slot.CapacityLimit)
	assert.Equal(t, 8, slot.CapacityCurrent)

	resp, err := svc.Update(context.Background(), target.ID, &models.UpdateSlotRequest{CapacityLimit: ptr.Ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, "full", resp.Slot.Label)
}

func TestUpdate_DateChangeBlockedByAbsences(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	original := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 7})
	testutil.SeedAbsence(t, store, original, "Hanako", time.Now())

	_, err := svc.Update(context.Background(), original.ID, &models.UpdateSlotRequest{LessonDate: ptr.Ptr("2026-04-22")})
	require.ErrorIs(t, err, ErrSlotInUse)
	assert.True(t, domain.SameDate(testutil.Date(2026, 4, 15), testutil.GetSlot(t, store, original.ID).LessonDate))

	// та же дата и смена времени допустимы
	resp, err := svc.Update(context.Background(), original.ID, &models.UpdateSlotRequest{
		LessonDate: ptr.Ptr("2026-04-15"),
		StartTime:  ptr.Ptr("17:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-04-15", resp.Slot.LessonDate)
}

func TestUpdate_ApplyToFuture(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	seed := func(day int) testutil.SlotSeed {
		return testutil.SlotSeed{Date: testutil.Date(2026, 4, day), Label: "Wed", Limit: 10, Current: 8}
	}

	past := testutil.SeedSlot(t, store, seed(8))
	edited := testutil.SeedSlot(t, store, seed(15))
	next := testutil.SeedSlot(t, store, seed(22))
	crowded := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 29), Label: "Wed", Limit: 10, Current: 8, MakeupUsed: 2})
	otherTime := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 22), Start: "17:30", Label: "Wed", Limit: 10, Current: 8})
	otherLabel := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 22), Start: "18:30", Label: "Other", Limit: 10, Current: 8})

	resp, err := svc.Update(context.Background(), edited.ID, &models.UpdateSlotRequest{
		CapacityLimit: ptr.Ptr(9),
		CourseLabel:   ptr.Ptr("Wed (small)"),
		ApplyToFuture: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{next.ID}, resp.AppliedTo)
	assert.Equal(t, []string{crowded.ID}, resp.SkippedFuture)

	assert.Equal(t, 9, testutil.GetSlot(t, store, edited.ID).CapacityLimit)
	assert.Equal(t, 9, testutil.GetSlot(t, store, next.ID).CapacityLimit)
	assert.Equal(t, "Wed (small)", testutil.GetSlot(t, store, next.ID).CourseLabel)

	assert.Equal(t, 10, testutil.GetSlot(t, store, past.ID).CapacityLimit)
	assert.Equal(t, 10, testutil.GetSlot(t, store, crowded.ID).CapacityLimit)
	assert.Equal(t, 10, testutil.GetSlot(t, store, otherTime.ID).CapacityLimit)
	assert.Equal(t, 10, testutil.GetSlot(t, store, otherLabel.ID).CapacityLimit)
}

func TestDelete(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	original := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 15), Limit: 10, Current: 8})
	target := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 8})
	absence := testutil.SeedAbsence(t, store, original, "Hanako", time.Now())
	testutil.SeedBooking(t, store, absence, target)
	testutil.SeedGuestBooking(t, store, target, "Guest")

	_, err := svc.Delete(context.Background(), original.ID)
	require.ErrorIs(t, err, ErrSlotReferenced)
	testutil.GetSlot(t, store, original.ID)

	resp, err := svc.Delete(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RequestsDeleted)
	assert.Equal(t, []string{absence.ID}, resp.AbsencesReopened)

	_, err = store.Slots().GetByID(context.Background(), target.ID)
	require.Error(t, err)

	requests, err := store.Requests().ListBySlot(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)

	assert.Equal(t, domain.AbsenceStatusPending, testutil.GetAbsence(t, store, absence.ID).Status)

	_, err = svc.Delete(context.Background(), target.ID)
	require.ErrorIs(t, err, ErrSlotNotFound)
}

func TestReconcile(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)

	target := testutil.SeedSlot(t, store, testutil.SlotSeed{Date: testutil.Date(2026, 4, 17), Limit: 10, Current: 6})
	testutil.SeedGuestBooking(t, store, target, "A")
	testutil.SeedGuestBooking(t, store, target, "B")

	resp, err := svc.Reconcile(context.Background(), target.ID)
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Equal(t, 2, resp.Confirmed)

	// счетчик разошелся с заявками
	require.NoError(t, store.Slots().UpdateCounters(context.Background(), target.ID, 6, 4))

	resp, err = svc.Reconcile(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 4, resp.Before)
	assert.Equal(t, 2, resp.After)
	assert.Equal(t, 2, testutil.GetSlot(t, store, target.ID).CapacityMakeupUsed)
}
