package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("slots").
		Where(squirrel.Eq{"class_band": "beginner"}).
		Where(squirrel.Gt{"starts_at": 1}).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM slots WHERE class_band = $1 AND starts_at > $2", query)
	assert.Equal(t, []interface{}{"beginner", 1}, args)
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "canonical", id: "0b6f0f5e-3d2b-4c43-9a0e-6a3f1d2c4b5a", want: true},
		{name: "upper case", id: "0B6F0F5E-3D2B-4C43-9A0E-6A3F1D2C4B5A", want: true},
		{name: "empty", id: "", want: false},
		{name: "short", id: "abc", want: false},
		{name: "sql injection attempt", id: "1' OR '1'='1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUUID(tt.id))
		})
	}
}
