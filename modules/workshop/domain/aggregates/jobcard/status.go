package jobcard

import (
	"fmt"
	"strings"
	"time"
)

type ConcernStatus string

const (
	ConcernPending ConcernStatus = "PENDING"
	ConcernWorking ConcernStatus = "WORKING"
	ConcernFixed   ConcernStatus = "FIXED"
)

func (s ConcernStatus) IsValid() bool {
	switch s {
	case ConcernPending, ConcernWorking, ConcernFixed:
		return true
	}
	return false
}

func ParseConcernStatus(v string) (ConcernStatus, error) {
	s := ConcernStatus(strings.ToUpper(strings.TrimSpace(v)))
	if s == "" {
		return ConcernPending, nil
	}
	if !s.IsValid() {
		return "", fmt.Errorf("%w: concern status %q", ErrInvalidStatus, v)
	}
	return s, nil
}

type SpareStatus string

const (
	SparePending SpareStatus = "PENDING"
	SpareOrdered SpareStatus = "ORDERED"
	SpareFixed   SpareStatus = "FIXED"
)

func (s SpareStatus) IsValid() bool {
	_, ok := spareRank[s]
	return ok
}

var spareRank = map[SpareStatus]int{
	SparePending: 0,
	SpareOrdered: 1,
	SpareFixed:   2,
}

func ParseSpareStatus(v string) (SpareStatus, error) {
	s := SpareStatus(strings.ToUpper(strings.TrimSpace(v)))
	if s == "" {
		return SparePending, nil
	}
	// Older cards recorded the last step as RECEIVED.
	if s == "RECEIVED" {
		return SpareFixed, nil
	}
	if !s.IsValid() {
		return "", fmt.Errorf("%w: spare status %q", ErrInvalidStatus, v)
	}
	return s, nil
}

// IsBackward reports whether moving from s to next goes back in the
// PENDING -> ORDERED -> FIXED order.
func (s SpareStatus) IsBackward(next SpareStatus) bool {
	return spareRank[next] < spareRank[s]
}

// Transition moves the item to next on day. Forward moves fill in the
// ordered/received date when it is empty. Backward moves are refused unless
// force is set; a forced move clears the dates that no longer apply.
func (it SpareItem) Transition(next SpareStatus, day time.Time, force bool) (SpareItem, error) {
	if !next.IsValid() {
		return it, fmt.Errorf("%w: spare status %q", ErrInvalidStatus, next)
	}
	from := it.Status
	if from == "" {
		from = SparePending
	}
	if from.IsBackward(next) {
		if !force {
			return it, fmt.Errorf("%w: %s -> %s", ErrStatusRegression, from, next)
		}
		switch next {
		case SparePending:
			it.OrderedDate = nil
			it.ReceivedDate = nil
		case SpareOrdered:
			it.ReceivedDate = nil
		}
		it.Status = next
		return it, nil
	}

	d := dateOnly(day)
	switch next {
	case SpareOrdered:
		if it.OrderedDate == nil {
			it.OrderedDate = &d
		}
	case SpareFixed:
		if it.ReceivedDate == nil {
			it.ReceivedDate = &d
		}
	}
	it.Status = next
	return it, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
