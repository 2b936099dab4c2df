package courses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/infra/storage/memory"
	"github.com/m04kA/kesseki-furikae/internal/service/courses/models"
	"github.com/m04kA/kesseki-furikae/pkg/logger"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
)

func TestService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Courses(), logger.NewNop())

	created, err := svc.Create(ctx, &models.CreateCourseRequest{
		Label:         "  Wednesday beginners ",
		Weekday:       int(time.Wednesday),
		StartTime:     "16:00",
		ClassBand:     "Beginner",
		CapacityLimit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Wednesday beginners", created.Label)
	assert.Equal(t, "beginner", created.ClassBand)
	assert.True(t, created.IsActive)

	updated, err := svc.Update(ctx, created.ID, &models.UpdateCourseRequest{
		StartTime: ptr.Ptr("17:30"),
		IsActive:  ptr.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "17:30", updated.StartTime)
	assert.Equal(t, "Wednesday beginners", updated.Label)
	assert.False(t, updated.IsActive)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active.Courses)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all.Courses, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrCourseNotFound)
}

func TestService_RejectsInvalidInput(t *testing.T) {
	svc := NewService(memory.NewStore().Courses(), logger.NewNop())

	valid := func() *models.CreateCourseRequest {
		return &models.CreateCourseRequest{Label: "Sat", Weekday: 6, StartTime: "10:00", ClassBand: "advanced", CapacityLimit: 8}
	}

	tests := []struct {
		name   string
		mutate func(r *models.CreateCourseRequest)
	}{
		{"empty label", func(r *models.CreateCourseRequest) { r.Label = "  " }},
		{"weekday out of range", func(r *models.CreateCourseRequest) { r.Weekday = 7 }},
		{"bad time", func(r *models.CreateCourseRequest) { r.StartTime = "25:00" }},
		{"unknown band", func(r *models.CreateCourseRequest) { r.ClassBand = "expert" }},
		{"zero limit", func(r *models.CreateCourseRequest) { r.CapacityLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := svc.Update(context.Background(), "missing", &models.UpdateCourseRequest{})
	require.ErrorIs(t, err, ErrCourseNotFound)
}
