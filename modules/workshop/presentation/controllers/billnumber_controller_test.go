package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/garage/modules/workshop/presentation/controllers"
	"github.com/iota-uz/garage/modules/workshop/services"
	"github.com/iota-uz/garage/pkg/httpapi"
	"github.com/iota-uz/garage/pkg/sequence"
)

func newRouter(t *testing.T, ids ...string) (*mux.Router, *sequence.MemoryStore) {
	t.Helper()
	store := sequence.NewMemoryStore(sequence.WithMemoryLockTimeout(time.Second))
	t.Cleanup(store.Close)
	if len(ids) > 0 {
		require.NoError(t, store.InTx(context.Background(), func(ctx context.Context) error {
			for _, id := range ids {
				if err := store.Insert(ctx, id, nil); err != nil {
					return err
				}
			}
			return nil
		}))
	}
	svc := services.NewBillNumberService(store, sequence.NewAssigner(store), "")
	r := mux.NewRouter()
	controllers.NewBillNumberController(svc).Register(r)
	return r, store
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBillNumberController_Audit(t *testing.T) {
	r, _ := newRouter(t, "JB-26-001", "JB-26-002", "JB-26-0x9", "JB-25-040")

	rec := get(r, "/ops/billno/2026")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "JB", body["prefix"])
	assert.Equal(t, "26", body["partition"])
	assert.InDelta(t, 3, body["total"], 0)
	assert.Equal(t, "JB-26-002", body["greatest"])
	assert.Equal(t, []any{"JB-26-0x9"}, body["malformed"])
	assert.Equal(t, "JB-26-003", body["next"])
}

func TestBillNumberController_NextDoesNotConsume(t *testing.T) {
	r, store := newRouter(t, "JB-25-040")

	for range 2 {
		rec := get(r, "/ops/billno/2025/next")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"next":"JB-25-041"}`, rec.Body.String())
	}
	ids, err := store.IDs(context.Background(), sequence.Key{Prefix: "JB", Partition: "25"})
	require.NoError(t, err)
	assert.Equal(t, []string{"JB-25-040"}, ids)
}

func TestBillNumberController_EmptyYear(t *testing.T) {
	r, _ := newRouter(t)

	rec := get(r, "/ops/billno/2030")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prefix":"JB","partition":"30","total":0,"malformed":[],"next":"JB-30-001"}`, rec.Body.String())
}

func TestBillNumberController_BadYear(t *testing.T) {
	r, _ := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(r, "/ops/billno/0999").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/ops/billno/26").Code)
}

func TestBillNumberController_StoreUnavailable(t *testing.T) {
	r, store := newRouter(t)
	store.Close()

	rec := get(r, "/ops/billno/2026")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httpapi.CodeStoreUnavailable, body.Code)
}
