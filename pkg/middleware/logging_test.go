package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/pkg/composables"
)

func TestWithLogger_LogsAndPropagatesRequestID(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := mux.NewRouter()
	r.Use(WithLogger(logrus.NewEntry(logger)))

	var seenID string
	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		seenID = composables.UseRequestID(r.Context())
		composables.UseLogger(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", seenID)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0].Data["request-id"])
	assert.Equal(t, "request completed", entries[1].Message)
	assert.Equal(t, http.StatusTeapot, entries[1].Data["status-code"])
}

func TestWithLogger_RecoversPanics(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := mux.NewRouter()
	r.Use(WithLogger(logrus.NewEntry(logger)))
	r.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestWithPool_NilPoolPassesThrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(WithPool(nil))

	var poolErr error
	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, poolErr = composables.UsePool(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.ErrorIs(t, poolErr, composables.ErrNoPool)
}
