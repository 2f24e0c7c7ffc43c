package sequence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const DefaultLockTimeout = 5 * time.Second

type memTxKey struct{}

// MemoryStore is an in-process Store that also keeps a payload per
// identifier, so it can back a whole in-memory repository. Writes made in a
// scope become visible to other scopes only on commit; per-key locks are
// released after the commit is applied.
type MemoryStore struct {
	lockTimeout time.Duration

	mu     sync.RWMutex
	rows   map[string]any
	closed bool

	locksMu sync.Mutex
	locks   map[Key]chan struct{}
}

type MemoryStoreOption func(*MemoryStore)

func WithMemoryLockTimeout(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		lockTimeout: DefaultLockTimeout,
		rows:        make(map[string]any),
		locks:       make(map[Key]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type memTx struct {
	pending map[string]any
	deleted map[string]struct{}
	held    map[Key]chan struct{}
}

func (tx *memTx) release() {
	for key, ch := range tx.held {
		<-ch
		delete(tx.held, key)
	}
}

func useMemTx(ctx context.Context) (*memTx, bool) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	return tx, ok && tx != nil
}

// Close makes every later scope fail with ErrStoreUnavailable.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := useMemTx(ctx); ok {
		return fn(ctx)
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreUnavailable
	}

	tx := &memTx{
		pending: make(map[string]any),
		deleted: make(map[string]struct{}),
		held:    make(map[Key]chan struct{}),
	}
	defer tx.release()

	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemoryStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreUnavailable
	}
	for id := range tx.pending {
		if _, exists := s.rows[id]; exists {
			if _, replacing := tx.deleted[id]; !replacing {
				return fmt.Errorf("%w: %s", ErrDuplicate, id)
			}
		}
	}
	for id := range tx.deleted {
		delete(s.rows, id)
	}
	for id, v := range tx.pending {
		s.rows[id] = v
	}
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, key Key) error {
	tx, ok := useMemTx(ctx)
	if !ok {
		return ErrNoTx
	}
	if _, held := tx.held[key]; held {
		return nil
	}

	s.locksMu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.locksMu.Unlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		tx.held[key] = ch
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: waited %s for %s", ErrLockTimeout, s.lockTimeout, key)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		}
		return ctx.Err()
	}
}

func (s *MemoryStore) Greatest(ctx context.Context, key Key) (string, bool, error) {
	ids, err := s.ids(ctx, key)
	if err != nil {
		return "", false, err
	}
	var (
		best    string
		bestSeq int64
	)
	for _, id := range ids {
		seq, err := key.SequenceOf(id)
		if err != nil {
			continue
		}
		if seq > bestSeq || (seq == bestSeq && greater(id, best)) {
			best, bestSeq = id, seq
		}
	}
	return best, best != "", nil
}

func (s *MemoryStore) Count(ctx context.Context, key Key) (Tally, error) {
	ids, err := s.ids(ctx, key)
	if err != nil {
		return Tally{}, err
	}
	t := Tally{Total: int64(len(ids))}
	for _, id := range ids {
		if _, err := key.SequenceOf(id); err != nil {
			t.Malformed++
		}
	}
	return t, nil
}

// IDs lists identifiers under key as seen from ctx, lowest first.
func (s *MemoryStore) IDs(ctx context.Context, key Key) ([]string, error) {
	ids, err := s.ids(ctx, key)
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return greater(ids[j], ids[i]) })
	return ids, nil
}

func (s *MemoryStore) ids(ctx context.Context, key Key) ([]string, error) {
	stem := key.Stem()
	tx, inTx := useMemTx(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreUnavailable
	}

	out := make([]string, 0)
	for id := range s.rows {
		if !strings.HasPrefix(id, stem) {
			continue
		}
		if inTx {
			if _, gone := tx.deleted[id]; gone {
				continue
			}
			if _, shadowed := tx.pending[id]; shadowed {
				continue
			}
		}
		out = append(out, id)
	}
	if inTx {
		for id := range tx.pending {
			if strings.HasPrefix(id, stem) {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// Insert stores v under id in the scope carried by ctx.
func (s *MemoryStore) Insert(ctx context.Context, id string, v any) error {
	tx, ok := useMemTx(ctx)
	if !ok {
		return ErrNoTx
	}
	if _, exists := s.lookup(tx, id); exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	tx.pending[id] = v
	return nil
}

// Replace overwrites the payload of an existing id.
func (s *MemoryStore) Replace(ctx context.Context, id string, v any) error {
	return s.InTx(ctx, func(txCtx context.Context) error {
		tx, _ := useMemTx(txCtx)
		if _, exists := s.lookup(tx, id); !exists {
			return fmt.Errorf("replace %s: not found", id)
		}
		tx.deleted[id] = struct{}{}
		tx.pending[id] = v
		return nil
	})
}

// Delete removes id. It reports whether id existed.
func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	var existed bool
	err := s.InTx(ctx, func(txCtx context.Context) error {
		tx, _ := useMemTx(txCtx)
		_, existed = s.lookup(tx, id)
		if !existed {
			return nil
		}
		delete(tx.pending, id)
		tx.deleted[id] = struct{}{}
		return nil
	})
	return existed, err
}

// Get returns the payload stored under id as seen from ctx.
func (s *MemoryStore) Get(ctx context.Context, id string) (any, bool) {
	tx, _ := useMemTx(ctx)
	return s.lookup(tx, id)
}

// Values returns every payload visible from ctx.
func (s *MemoryStore) Values(ctx context.Context) []any {
	tx, inTx := useMemTx(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]any, 0, len(s.rows))
	for id, v := range s.rows {
		if inTx {
			if _, gone := tx.deleted[id]; gone {
				continue
			}
			if _, shadowed := tx.pending[id]; shadowed {
				continue
			}
		}
		out = append(out, v)
	}
	if inTx {
		for _, v := range tx.pending {
			out = append(out, v)
		}
	}
	return out
}

func (s *MemoryStore) lookup(tx *memTx, id string) (any, bool) {
	if tx != nil {
		if v, ok := tx.pending[id]; ok {
			return v, true
		}
		if _, gone := tx.deleted[id]; gone {
			return nil, false
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.rows[id]
	return v, ok
}
