package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

func TestUpsertQuery_TargetsSingletonRow(t *testing.T) {
	cutoff := types.MustTimeString("12:00")

	query, args, err := upsertQuery(&domain.Settings{MakeupWindowDays: 14, CutoffTime: cutoff}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO settings (id,makeup_window_days,cutoff_time) VALUES ($1,$2,$3)")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE SET")
	assert.Contains(t, query, "RETURNING updated_at")
	assert.Equal(t, []interface{}{singletonID, 14, cutoff}, args)
}
