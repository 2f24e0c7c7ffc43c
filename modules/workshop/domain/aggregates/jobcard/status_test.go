package jobcard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
)

func TestParseSpareStatus(t *testing.T) {
	cases := map[string]jobcard.SpareStatus{
		"":          jobcard.SparePending,
		"pending":   jobcard.SparePending,
		" ordered ": jobcard.SpareOrdered,
		"FIXED":     jobcard.SpareFixed,
		"received":  jobcard.SpareFixed,
	}
	for in, want := range cases {
		got, err := jobcard.ParseSpareStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := jobcard.ParseSpareStatus("lost")
	require.ErrorIs(t, err, jobcard.ErrInvalidStatus)
}

func TestParseConcernStatus(t *testing.T) {
	got, err := jobcard.ParseConcernStatus("working")
	require.NoError(t, err)
	assert.Equal(t, jobcard.ConcernWorking, got)

	got, err = jobcard.ParseConcernStatus("")
	require.NoError(t, err)
	assert.Equal(t, jobcard.ConcernPending, got)

	_, err = jobcard.ParseConcernStatus("DONE")
	require.ErrorIs(t, err, jobcard.ErrInvalidStatus)
}

func TestSpareTransition_ForwardFillsDates(t *testing.T) {
	item := jobcard.SpareItem{Status: jobcard.SparePending}

	ordered, err := item.Transition(jobcard.SpareOrdered, day, false)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 14), ordered.OrderedDate)
	assert.Nil(t, ordered.ReceivedDate)

	fixed, err := ordered.Transition(jobcard.SpareFixed, day.AddDate(0, 0, 3), false)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 14), fixed.OrderedDate)
	assert.Equal(t, date(2026, 3, 17), fixed.ReceivedDate)
}

func TestSpareTransition_KeepsExplicitDates(t *testing.T) {
	item := jobcard.SpareItem{Status: jobcard.SparePending, OrderedDate: date(2026, 1, 2)}
	ordered, err := item.Transition(jobcard.SpareOrdered, day, false)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 1, 2), ordered.OrderedDate)
}

func TestSpareTransition_ForcedBackToPendingClearsDates(t *testing.T) {
	item := jobcard.SpareItem{Status: jobcard.SpareFixed, OrderedDate: date(2026, 1, 2), ReceivedDate: date(2026, 1, 5)}

	_, err := item.Transition(jobcard.SparePending, day, false)
	require.ErrorIs(t, err, jobcard.ErrStatusRegression)

	pending, err := item.Transition(jobcard.SparePending, day, true)
	require.NoError(t, err)
	assert.Equal(t, jobcard.SparePending, pending.Status)
	assert.Nil(t, pending.OrderedDate)
	assert.Nil(t, pending.ReceivedDate)
}

func TestSpareStatus_IsBackward(t *testing.T) {
	assert.True(t, jobcard.SpareFixed.IsBackward(jobcard.SpareOrdered))
	assert.True(t, jobcard.SpareOrdered.IsBackward(jobcard.SparePending))
	assert.False(t, jobcard.SparePending.IsBackward(jobcard.SpareFixed))
	assert.False(t, jobcard.SpareOrdered.IsBackward(jobcard.SpareOrdered))
}
