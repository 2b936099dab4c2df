package makeup

import (
	"context"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
)

const (
	requestID = "9a4e2b71-6c3d-4f80-a5b2-1e7d3c9f0b46"
	slotID    = "0b6f0f5e-3d2b-4c43-9a0e-6a3f1d2c4b5a"
)

func TestSelectOneQuery(t *testing.T) {
	query, args, err := selectOneQuery(squirrel.Eq{"id": requestID}, true).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM requests WHERE id = $1 FOR UPDATE")
	assert.Equal(t, []interface{}{requestID}, args)

	query, args, err = selectOneQuery(squirrel.Eq{"decline_token": "tok"}, false).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE decline_token = $1")
	assert.NotContains(t, query, "FOR UPDATE")
	assert.Equal(t, []interface{}{"tok"}, args)
}

func TestExistsConfirmedForChildQuery(t *testing.T) {
	query, args, err := existsConfirmedForChildQuery(slotID, "Hanako").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT EXISTS ( SELECT 1 FROM requests WHERE child_name = $1 AND slot_id = $2 AND status = $3 )",
		query)
	assert.Equal(t, []interface{}{"Hanako", slotID, domain.RequestStatusConfirmed}, args)
}

func TestListQuery(t *testing.T) {
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query, args, err := listQuery(domain.RequestFilter{
		SlotID:    ptr.Ptr(slotID),
		Status:    ptr.Ptr(domain.RequestStatusConfirmed),
		StartFrom: &from,
		StartTo:   &to,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "slot_id = $1 AND status = $2 AND slot_starts_at >= $3 AND slot_starts_at < $4")
	assert.Contains(t, query, "ORDER BY slot_starts_at ASC, created_at ASC")
	assert.Equal(t, []interface{}{slotID, domain.RequestStatusConfirmed, from, to}, args)
}

func TestRepository_NonUUIDSkipsDatabase(t *testing.T) {
	repo := NewRepository(nil)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = repo.LockByID(ctx, "abc")
	assert.ErrorIs(t, err, ErrRequestNotFound)

	requests, err := repo.ListByAbsence(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, requests)

	requests, err = repo.ListBySlot(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, requests)

	requests, err = repo.List(ctx, domain.RequestFilter{AbsenceID: ptr.Ptr("abc")})
	require.NoError(t, err)
	assert.Empty(t, requests)

	exists, err := repo.ExistsConfirmedForChild(ctx, "abc", "Hanako")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := repo.CountConfirmedBySlot(ctx, "abc")
	require.NoError(t, err)
	assert.Zero(t, count)
}
