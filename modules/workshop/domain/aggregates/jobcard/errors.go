package jobcard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound            = errors.New("job card not found")
	ErrBillNumberTaken     = errors.New("bill number already taken")
	ErrBillNumberImmutable = errors.New("bill number cannot be changed once assigned")
	ErrAlreadyDelivered    = errors.New("job card already delivered")
	ErrNotDelivered        = errors.New("job card is not delivered")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrStatusRegression    = errors.New("spare status cannot move backwards without force")
)

// ValidationError carries field-level messages keyed by the DTO field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid job card: " + strings.Join(parts, "; ")
}
