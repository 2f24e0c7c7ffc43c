package sequence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *MemoryStore, ids ...string) {
	t.Helper()
	err := store.InTx(context.Background(), func(ctx context.Context) error {
		for _, id := range ids {
			if err := store.Insert(ctx, id, id); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func create(ctx context.Context, a *Assigner, store *MemoryStore, prefix, partition string) (string, error) {
	return a.WithNext(ctx, prefix, partition, func(txCtx context.Context, id string) error {
		return store.Insert(txCtx, id, id)
	})
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestAssigner_FirstInPartition(t *testing.T) {
	store := NewMemoryStore()
	a := NewAssigner(store)

	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-001", id)

	id, err = create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-002", id)
}

func TestAssigner_FollowsGreatestNotCount(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "JB-26-001", "JB-26-002", "JB-26-003")
	_, err := store.Delete(context.Background(), "JB-26-002")
	require.NoError(t, err)

	a := NewAssigner(store)
	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-004", id)
}

func TestAssigner_GrowsPastPaddingFloor(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "JB-26-998", "JB-26-999")
	a := NewAssigner(store)

	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-1000", id)

	id, err = create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-1001", id)
}

func TestAssigner_PartitionsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "JB-25-001", "JB-25-002", "JB-25-003", "XX-26-009")
	a := NewAssigner(store)

	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-001", id)

	id, err = create(context.Background(), a, store, "JB", "25")
	require.NoError(t, err)
	assert.Equal(t, "JB-25-004", id)
}

func TestAssigner_ConcurrentCreatesAreDistinctAndGapless(t *testing.T) {
	const n = 64
	store := NewMemoryStore()
	a := NewAssigner(store)

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = create(context.Background(), a, store, "JB", "26")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	seqs := make([]int, 0, n)
	for _, id := range ids {
		parsed, err := Parse(id)
		require.NoError(t, err)
		seqs = append(seqs, int(parsed.Sequence))
	}
	sort.Ints(seqs)
	for i, seq := range seqs {
		require.Equal(t, i+1, seq)
	}
}

func TestAssigner_OtherPartitionNotBlocked(t *testing.T) {
	store := NewMemoryStore(WithMemoryLockTimeout(2 * time.Second))
	a := NewAssigner(store)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.InTx(context.Background(), func(ctx context.Context) error {
			if err := store.Lock(ctx, Key{Prefix: "JB", Partition: "26"}); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	start := time.Now()
	id, err := create(context.Background(), a, store, "JB", "27")
	require.NoError(t, err)
	assert.Equal(t, "JB-27-001", id)
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	require.NoError(t, <-done)
}

func TestAssigner_LockTimeout(t *testing.T) {
	store := NewMemoryStore(WithMemoryLockTimeout(30 * time.Millisecond))
	a := NewAssigner(store)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.InTx(context.Background(), func(ctx context.Context) error {
			if err := store.Lock(ctx, Key{Prefix: "JB", Partition: "26"}); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	called := false
	_, err := a.WithNext(context.Background(), "JB", "26", func(context.Context, string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrLockTimeout)
	assert.False(t, called)

	close(release)
	require.NoError(t, <-done)

	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-001", id)
}

func TestAssigner_CancelledWhileWaiting(t *testing.T) {
	store := NewMemoryStore(WithMemoryLockTimeout(5 * time.Second))
	a := NewAssigner(store)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.InTx(context.Background(), func(ctx context.Context) error {
			if err := store.Lock(ctx, Key{Prefix: "JB", Partition: "26"}); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := create(ctx, a, store, "JB", "26")
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)
}

func TestAssigner_FailedInsertDoesNotConsumeIdentifier(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "JB-26-001", "JB-26-002", "JB-26-003")
	a := NewAssigner(store)

	boom := errors.New("validation failed")
	var seen string
	_, err := a.WithNext(context.Background(), "JB", "26", func(ctx context.Context, id string) error {
		seen = id
		if err := store.Insert(ctx, id, id); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "JB-26-004", seen)

	_, ok := store.Get(context.Background(), "JB-26-004")
	assert.False(t, ok)

	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-004", id)
}

func gaugeValue(t *testing.T, g interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestAssigner_OnlyMalformedFallsBackToCount(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "MF-26-abc")

	logger, hook := logtest.NewNullLogger()
	a := NewAssigner(store, WithLogger(logrus.NewEntry(logger)))
	before := counterValue(t, getMetrics().malformedTotal.WithLabelValues("MF", "26"))

	id, err := create(context.Background(), a, store, "MF", "26")
	require.NoError(t, err)
	assert.Equal(t, "MF-26-002", id)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "falling back to count")
	assert.Equal(t, int64(1), entry.Data["malformed"])
	assert.Equal(t, int64(1), entry.Data["count"])

	after := counterValue(t, getMetrics().malformedTotal.WithLabelValues("MF", "26"))
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestAssigner_MalformedIgnoredAfterDeletions(t *testing.T) {
	store := NewMemoryStore()
	// "JB-26-abc" outranks every well-formed number by length-then-lexical
	// order, and the deletions leave the count below the highest number.
	seed(t, store, "JB-26-001", "JB-26-002", "JB-26-003", "JB-26-004", "JB-26-005", "JB-26-abc")
	for _, id := range []string{"JB-26-002", "JB-26-003"} {
		_, err := store.Delete(context.Background(), id)
		require.NoError(t, err)
	}

	logger, hook := logtest.NewNullLogger()
	a := NewAssigner(store, WithLogger(logrus.NewEntry(logger)))
	fallbacks := counterValue(t, getMetrics().malformedTotal.WithLabelValues("JB", "26"))

	id, err := create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-006", id)

	id, err = create(context.Background(), a, store, "JB", "26")
	require.NoError(t, err)
	assert.Equal(t, "JB-26-007", id)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, int64(1), entry.Data["malformed"])
	assert.InDelta(t, 1, gaugeValue(t, getMetrics().malformedRows.WithLabelValues("JB", "26")), 0.0001)
	assert.InDelta(t, fallbacks, counterValue(t, getMetrics().malformedTotal.WithLabelValues("JB", "26")), 0.0001)
}

func TestAssigner_MalformedSortingAboveGreatest(t *testing.T) {
	for _, tc := range []struct {
		name string
		ids  []string
		want string
	}{
		{name: "hex-like", ids: []string{"HX-26-004", "HX-26-005", "HX-26-0x9"}, want: "HX-26-006"},
		{name: "digit-letter mix", ids: []string{"DL-26-005", "DL-26-0a1"}, want: "DL-26-006"},
		{name: "zero suffix", ids: []string{"ZS-26-001", "ZS-26-0000"}, want: "ZS-26-002"},
		{name: "wider padding", ids: []string{"WP-26-0010", "WP-26-011"}, want: "WP-26-012"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			seed(t, store, tc.ids...)
			a := NewAssigner(store)

			id, err := create(context.Background(), a, store, tc.want[:2], "26")
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestAssigner_CleanPartitionDoesNotWarn(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "CP-26-001")

	logger, hook := logtest.NewNullLogger()
	a := NewAssigner(store, WithLogger(logrus.NewEntry(logger)))

	_, err := create(context.Background(), a, store, "CP", "26")
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
	assert.Zero(t, gaugeValue(t, getMetrics().malformedRows.WithLabelValues("CP", "26")))
}

func TestAssigner_PeekIsUnmetered(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "PK-26-001", "PK-26-xyz")

	logger, hook := logtest.NewNullLogger()
	a := NewAssigner(store, WithLogger(logrus.NewEntry(logger)))
	ok := counterValue(t, getMetrics().assignTotal.WithLabelValues("PK", "ok"))

	var next string
	err := store.InTx(context.Background(), func(ctx context.Context) error {
		var err error
		next, err = a.Peek(ctx, "PK", "26")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "PK-26-002", next)
	assert.Empty(t, hook.AllEntries())
	assert.InDelta(t, ok, counterValue(t, getMetrics().assignTotal.WithLabelValues("PK", "ok")), 0.0001)

	_, found := store.Get(context.Background(), "PK-26-002")
	assert.False(t, found)

	_, err = a.Peek(context.Background(), "PK", "26")
	require.ErrorIs(t, err, ErrNoTx)
	_, err = a.Peek(context.Background(), "P-K", "26")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestAssigner_InvalidKey(t *testing.T) {
	store := NewMemoryStore()
	a := NewAssigner(store)

	_, err := create(context.Background(), a, store, "J-B", "26")
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = create(context.Background(), a, store, "JB", "")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestAssigner_StoreUnavailable(t *testing.T) {
	store := NewMemoryStore()
	store.Close()
	a := NewAssigner(store)

	called := false
	_, err := a.WithNext(context.Background(), "JB", "26", func(context.Context, string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, called)
}

func TestAssigner_AssignNextOutsideScope(t *testing.T) {
	a := NewAssigner(NewMemoryStore())
	_, err := a.AssignNext(context.Background(), "JB", "26")
	require.ErrorIs(t, err, ErrNoTx)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "lock_timeout", resultLabel(fmt.Errorf("lock: %w", ErrLockTimeout)))
	assert.Equal(t, "store_unavailable", resultLabel(ErrStoreUnavailable))
	assert.Equal(t, "error", resultLabel(errors.New("x")))
}
