package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/modules/workshop/domain/aggregates/jobcard"
	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
	"github.com/iota-uz/garage/pkg/sequence"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{withCode(exitUsage, errors.New("bad flag")), exitUsage},
		{&jobcard.ValidationError{Fields: map[string]string{"BrandName": "is required"}}, exitValidation},
		{fmt.Errorf("show: %w", jobcard.ErrNotFound), exitNotFound},
		{errors.Join(jobcard.ErrBillNumberTaken, errors.New("23505")), exitConflict},
		{jobcard.ErrAlreadyDelivered, exitConflict},
		{&catalog.ValidationError{Fields: map[string]string{"Name": "failed \"required\" check"}}, exitValidation},
		{fmt.Errorf("edit: %w", catalog.ErrNotFound), exitNotFound},
		{catalog.ErrDuplicate, exitConflict},
		{fmt.Errorf("assign: %w", sequence.ErrLockTimeout), exitBusy},
		{sequence.ErrStoreUnavailable, exitDB},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, exitCode(tc.err), "%v", tc.err)
	}
}

func TestParseYear(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	year, err := parseYear(nil, now)
	require.NoError(t, err)
	assert.Equal(t, 2026, year)

	year, err = parseYear([]string{"2025"}, now)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)

	for _, bad := range []string{"25", "20x6", "10000"} {
		_, err := parseYear([]string{bad}, now)
		require.Error(t, err, bad)
		assert.Equal(t, exitUsage, exitCode(err), bad)
	}
}

func TestRootCmd_Tree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "status"},
		{"jobcard", "create"},
		{"jc", "deliver"},
		{"catalog", "brand", "create"},
		{"catalog", "brand", "edit"},
		{"catalog", "model", "edit"},
		{"catalog", "spare", "list"},
		{"md", "concern", "edit"},
		{"billno", "audit"},
		{"invoice", "export"},
		{"serve"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestCatalogCmd_EditRejectsBadID(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"catalog", "spare", "edit", "not-a-uuid", "--name", "Oil filter"})
	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}
