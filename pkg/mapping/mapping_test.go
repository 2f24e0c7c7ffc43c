package mapping_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iota-uz/garage/pkg/mapping"
)

func TestValueToSQLNullString(t *testing.T) {
	assert.Equal(t, sql.NullString{}, mapping.ValueToSQLNullString(""))
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, mapping.ValueToSQLNullString("x"))
}

func TestNullTimeRoundTrip(t *testing.T) {
	assert.Nil(t, mapping.SQLNullTimeToPointer(mapping.PointerToSQLNullTime(nil)))

	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	got := mapping.SQLNullTimeToPointer(mapping.PointerToSQLNullTime(&now))
	if assert.NotNil(t, got) {
		assert.True(t, now.Equal(*got))
	}
}

func TestNullDecimal(t *testing.T) {
	assert.False(t, mapping.PointerToNullDecimal(nil).Valid)
	assert.Nil(t, mapping.NullDecimalToPointer(decimal.NullDecimal{}))

	d := decimal.RequireFromString("12.50")
	got := mapping.NullDecimalToPointer(mapping.PointerToNullDecimal(&d))
	if assert.NotNil(t, got) {
		assert.True(t, d.Equal(*got))
	}
}

func TestMapSlice(t *testing.T) {
	assert.Equal(t, []int{2, 4}, mapping.MapSlice([]int{1, 2}, func(v int) int { return v * 2 }))
	assert.Empty(t, mapping.MapSlice([]int(nil), func(v int) int { return v }))
}
