// Package mapping converts between domain values and database/sql nullable
// types.
package mapping

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ValueToSQLNullString maps "" to NULL.
func ValueToSQLNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func PointerToSQLNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func SQLNullTimeToPointer(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func PointerToNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func NullDecimalToPointer(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// MapSlice applies fn to every element of in.
func MapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
