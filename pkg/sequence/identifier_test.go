package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_PadsToFloorOnly(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "JB-26-001"},
		{7, "JB-26-007"},
		{42, "JB-26-042"},
		{999, "JB-26-999"},
		{1000, "JB-26-1000"},
		{123456, "JB-26-123456"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format("JB", "26", tc.seq))
	}
}

func TestParse(t *testing.T) {
	id, err := Parse("JB-26-042")
	require.NoError(t, err)
	assert.Equal(t, Identifier{Prefix: "JB", Partition: "26", Sequence: 42}, id)
	assert.Equal(t, "JB-26-042", id.String())
	assert.Equal(t, Key{Prefix: "JB", Partition: "26"}, id.Key())

	wide, err := Parse("JB-26-1000")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), wide.Sequence)
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"JB-26",
		"JB-26-",
		"JB-26-abc",
		"JB-26-12a",
		"JB-26-000",
		"JB-26--1",
		"JB-26-+1",
		"-26-001",
		"JB--001",
		"JB-26-001-x",
	} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrMalformedSequence, in)
	}
}

func TestKey_SequenceOf(t *testing.T) {
	key := Key{Prefix: "JB", Partition: "26"}

	seq, err := key.SequenceOf("JB-26-017")
	require.NoError(t, err)
	assert.Equal(t, int64(17), seq)

	_, err = key.SequenceOf("JB-27-017")
	require.ErrorIs(t, err, ErrMalformedSequence)

	_, err = key.SequenceOf("JB-26-x17")
	require.ErrorIs(t, err, ErrMalformedSequence)
}

func TestKey_Validate(t *testing.T) {
	require.NoError(t, Key{Prefix: "JB", Partition: "26"}.Validate())
	require.ErrorIs(t, Key{Prefix: "", Partition: "26"}.Validate(), ErrInvalidKey)
	require.ErrorIs(t, Key{Prefix: "JB", Partition: " "}.Validate(), ErrInvalidKey)
	require.ErrorIs(t, Key{Prefix: "J-B", Partition: "26"}.Validate(), ErrInvalidKey)
	require.ErrorIs(t, Key{Prefix: "JB", Partition: "2-6"}.Validate(), ErrInvalidKey)
}

func TestKey_Stem(t *testing.T) {
	key := Key{Prefix: "INV", Partition: "07"}
	assert.Equal(t, "INV-07-", key.Stem())
	assert.Equal(t, "INV-07", key.String())
	assert.Equal(t, "INV-07-003", key.Format(3))
}

func TestPartitionForYear(t *testing.T) {
	assert.Equal(t, "26", PartitionForYear(2026))
	assert.Equal(t, "00", PartitionForYear(2000))
	assert.Equal(t, "05", PartitionForYear(2105))
	assert.Equal(t, "99", PartitionForYear(1999))
}

func TestGreater(t *testing.T) {
	assert.True(t, greater("JB-26-1000", "JB-26-999"))
	assert.True(t, greater("JB-26-010", "JB-26-009"))
	assert.False(t, greater("JB-26-009", "JB-26-010"))
	assert.False(t, greater("JB-26-001", "JB-26-001"))
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `JB-26-%`, likePattern(Key{Prefix: "JB", Partition: "26"}))
	assert.Equal(t, `J\_B-2\%6-%`, likePattern(Key{Prefix: "J_B", Partition: "2%6"}))
	assert.Equal(t, `J\\B-26-%`, likePattern(Key{Prefix: `J\B`, Partition: "26"}))
}
