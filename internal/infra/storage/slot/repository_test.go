package slot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

const slotID = "0b6f0f5e-3d2b-4c43-9a0e-6a3f1d2c4b5a"

func TestSelectOneQuery(t *testing.T) {
	t.Run("plain read", func(t *testing.T) {
		query, args, err := selectOneQuery(squirrel.Eq{"id": slotID}, false).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "FROM slots WHERE id = $1")
		assert.NotContains(t, query, "FOR UPDATE")
		assert.Equal(t, []interface{}{slotID}, args)
	})

	t.Run("row lock", func(t *testing.T) {
		query, _, err := selectOneQuery(squirrel.Eq{"id": slotID}, true).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE id = $1 FOR UPDATE")
	})
}

func TestListQuery(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		query, args, err := listQuery(domain.SlotFilter{}).ToSql()
		require.NoError(t, err)

		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "ORDER BY starts_at ASC, class_band ASC")
		assert.Empty(t, args)
	})

	t.Run("series filter", func(t *testing.T) {
		weekday := time.Wednesday
		query, args, err := listQuery(domain.SlotFilter{
			ClassBand:   ptr.Ptr(domain.ClassBandBeginner),
			StartTime:   ptr.Ptr(types.MustTimeString("16:00")),
			CourseLabel: ptr.Ptr("Kids A"),
			Weekday:     &weekday,
		}).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "class_band = $1")
		assert.Contains(t, query, "start_time = $2")
		assert.Contains(t, query, "course_label = $3")
		assert.Contains(t, query, "EXTRACT(DOW FROM lesson_date) = $4")
		assert.Equal(t, []interface{}{domain.ClassBandBeginner, "16:00", "Kids A", 3}, args)
	})

	t.Run("only available and time range", func(t *testing.T) {
		from := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
		to := from.Add(24 * time.Hour)
		query, args, err := listQuery(domain.SlotFilter{
			StartsAfter:   &from,
			StartsBefore:  &to,
			OnlyAvailable: true,
		}).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "starts_at > $1 AND starts_at < $2")
		assert.Contains(t, query, "capacity_limit - capacity_current - capacity_makeup_used > 0")
		assert.Equal(t, []interface{}{from, to}, args)
	})
}

// Невалидный UUID не доходит до PostgreSQL: репозиторий без соединения отвечает "не найдено"
func TestRepository_NonUUIDIsNotFound(t *testing.T) {
	repo := NewRepository(nil)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = repo.LockByID(ctx, "1' OR '1'='1")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, ""), ErrSlotNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pq.Error{Code: codeUniqueViolation}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "22P02"}))
	assert.False(t, isUniqueViolation(fmt.Errorf("boom")))
}
