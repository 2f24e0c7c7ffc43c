package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/iota-uz/garage/pkg/sequence"

// Assigner computes the next identifier of a partition. It keeps no state
// between calls; all coordination happens in the Store.
type Assigner struct {
	store  Store
	logger *logrus.Entry
	tracer trace.Tracer
	m      *metrics
}

type Option func(*Assigner)

func WithLogger(logger *logrus.Entry) Option {
	return func(a *Assigner) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(a *Assigner) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

func NewAssigner(store Store, opts ...Option) *Assigner {
	a := &Assigner{
		store:  store,
		logger: logrusNop(),
		tracer: otel.Tracer(tracerName),
		m:      getMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AssignNext locks the (prefix, partition) sequence and returns its next
// formatted identifier. ctx must carry the scope opened by Store.InTx, and the
// caller must insert the owning record before that scope ends.
func (a *Assigner) AssignNext(ctx context.Context, prefix, partition string) (string, error) {
	key := Key{Prefix: prefix, Partition: partition}
	if err := key.Validate(); err != nil {
		return "", err
	}

	ctx, span := a.tracer.Start(ctx, "sequence.AssignNext", trace.WithAttributes(
		attribute.String("sequence.prefix", prefix),
		attribute.String("sequence.partition", partition),
	))
	defer span.End()

	id, err := a.assign(ctx, key)
	a.m.assignTotal.WithLabelValues(prefix, resultLabel(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("sequence.identifier", id))
	return id, nil
}

// Peek returns the identifier AssignNext would hand out, under the same lock,
// without recording metrics or logging. ctx must carry a Store.InTx scope.
func (a *Assigner) Peek(ctx context.Context, prefix, partition string) (string, error) {
	key := Key{Prefix: prefix, Partition: partition}
	if err := key.Validate(); err != nil {
		return "", err
	}
	ctx, span := a.tracer.Start(ctx, "sequence.Peek", trace.WithAttributes(
		attribute.String("sequence.prefix", prefix),
		attribute.String("sequence.partition", partition),
	))
	defer span.End()

	if err := a.store.Lock(ctx, key); err != nil {
		err = fmt.Errorf("lock %s: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	next, _, err := a.next(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return key.Format(next), nil
}

// WithNext opens a scope on the store, assigns the next identifier and hands
// it to fn for persisting the owning record. The scope commits only if fn
// succeeds; otherwise it rolls back and the identifier is not consumed.
func (a *Assigner) WithNext(ctx context.Context, prefix, partition string, fn func(ctx context.Context, id string) error) (string, error) {
	var assigned string
	err := a.store.InTx(ctx, func(txCtx context.Context) error {
		id, err := a.AssignNext(txCtx, prefix, partition)
		if err != nil {
			return err
		}
		if err := fn(txCtx, id); err != nil {
			return err
		}
		assigned = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return assigned, nil
}

func (a *Assigner) assign(ctx context.Context, key Key) (string, error) {
	start := time.Now()
	if err := a.store.Lock(ctx, key); err != nil {
		return "", fmt.Errorf("lock %s: %w", key, err)
	}
	a.m.lockWait.WithLabelValues(key.Prefix).Observe(time.Since(start).Seconds())

	next, tally, err := a.next(ctx, key)
	if err != nil {
		return "", err
	}
	a.report(key, tally, next)
	return key.Format(next), nil
}

// next is one past the greatest well-formed sequence under key. Only when
// the partition holds no well-formed identifier at all but does hold
// malformed ones does it fall back to the row count.
func (a *Assigner) next(ctx context.Context, key Key) (int64, Tally, error) {
	greatest, found, err := a.store.Greatest(ctx, key)
	if err != nil {
		return 0, Tally{}, fmt.Errorf("read high-water mark of %s: %w", key, err)
	}
	var seq int64
	if found {
		if seq, err = key.SequenceOf(greatest); err != nil {
			return 0, Tally{}, fmt.Errorf("read high-water mark of %s: %w", key, err)
		}
	}

	tally, err := a.store.Count(ctx, key)
	if err != nil {
		return 0, Tally{}, fmt.Errorf("count %s: %w", key, err)
	}
	if !found && tally.Malformed > 0 {
		return tally.Total + 1, tally, nil
	}
	return seq + 1, tally, nil
}

func (a *Assigner) report(key Key, tally Tally, next int64) {
	a.m.malformedRows.WithLabelValues(key.Prefix, key.Partition).Set(float64(tally.Malformed))
	if tally.Malformed == 0 {
		return
	}
	fields := logrus.Fields{
		"prefix":    key.Prefix,
		"partition": key.Partition,
		"malformed": tally.Malformed,
		"count":     tally.Total,
		"next":      key.Format(next),
	}
	if tally.Malformed == tally.Total {
		a.m.malformedTotal.WithLabelValues(key.Prefix, key.Partition).Inc()
		a.logger.WithFields(fields).Warn("sequence: no well-formed identifier, falling back to count")
		return
	}
	a.logger.WithFields(fields).Warn("sequence: malformed identifiers ignored")
}

func logrusNop() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
