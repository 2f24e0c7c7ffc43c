package httpapi_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/pkg/httpapi"
	"github.com/iota-uz/garage/pkg/sequence"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("lock JB-26: %w", sequence.ErrLockTimeout), http.StatusServiceUnavailable, httpapi.CodeLockTimeout},
		{sequence.ErrStoreUnavailable, http.StatusServiceUnavailable, httpapi.CodeStoreUnavailable},
		{sequence.ErrInvalidKey, http.StatusBadRequest, httpapi.CodeBadRequest},
		{errors.New("boom"), http.StatusInternalServerError, httpapi.CodeInternal},
	}
	for _, tc := range cases {
		status, code := httpapi.StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestWriteFailure_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteFailure(rec, errors.New("password=secret")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httpapi.CodeInternal, body.Code)
	assert.NotContains(t, body.Message, "secret")
}

func TestWriteFailure_LockTimeout(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteFailure(rec, sequence.ErrLockTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), httpapi.CodeLockTimeout)
}
