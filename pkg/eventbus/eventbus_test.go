package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type created struct {
	id string
}

type deleted struct {
	id string
}

type describer interface {
	Describe() string
}

func (c *created) Describe() string { return "created " + c.id }

func TestPublisher_DeliversToMatchingHandlersOnly(t *testing.T) {
	bus := NewEventPublisher(nil)
	var got []string
	bus.Subscribe(func(e *created) { got = append(got, "created:"+e.id) })
	bus.Subscribe(func(e *deleted) { got = append(got, "deleted:"+e.id) })
	bus.Subscribe(func(ctx context.Context, e *created) { got = append(got, "ctx:"+e.id) })

	bus.Publish(&created{id: "JB-26-001"})
	bus.Publish(context.Background(), &created{id: "JB-26-002"})

	assert.Equal(t, []string{"created:JB-26-001", "ctx:JB-26-002"}, got)
}

func TestPublisher_InterfaceParameter(t *testing.T) {
	bus := NewEventPublisher(nil)
	var got string
	bus.Subscribe(func(d describer) { got = d.Describe() })

	require.NoError(t, bus.PublishE(&created{id: "JB-26-001"}))
	assert.Equal(t, "created JB-26-001", got)
}

func TestPublisher_NoSubscribers(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	bus := NewEventPublisher(logrus.NewEntry(logger))
	bus.Subscribe(func(e *deleted) { t.Error("should not be called") })

	require.ErrorIs(t, bus.PublishE(&created{}), ErrNoSubscribers)

	bus.Publish(&created{})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestPublisher_HandlerErrorsAreJoined(t *testing.T) {
	bus := NewEventPublisher(nil)
	first := errors.New("first")
	calls := 0
	bus.Subscribe(func(e *created) error { calls++; return first })
	bus.Subscribe(func(e *created) error { calls++; return nil })
	bus.Subscribe(func(e *created) { calls++; panic("boom") })

	err := bus.PublishE(&created{})
	require.ErrorIs(t, err, first)
	assert.Contains(t, err.Error(), "panicked: boom")
	assert.Equal(t, 3, calls)
}

func TestPublisher_InvalidReturn(t *testing.T) {
	bus := NewEventPublisher(nil)
	bus.Subscribe(func(e *created) int { return 1 })
	require.ErrorIs(t, bus.PublishE(&created{}), ErrInvalidHandlerReturn)
}

func TestPublisher_PublishLogsHandlerFailure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	bus := NewEventPublisher(logrus.NewEntry(logger))
	bus.Subscribe(func(e *created) error { return errors.New("handler failed") })

	bus.Publish(&created{})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestPublisher_NilArgument(t *testing.T) {
	bus := NewEventPublisher(nil)
	called := false
	bus.Subscribe(func(e *created) {
		called = true
		assert.Nil(t, e)
	})
	require.NoError(t, bus.PublishE(nil))
	assert.True(t, called)
}

func TestPublisher_SubscribeUnsubscribeClear(t *testing.T) {
	bus := NewEventPublisher(nil)
	h := func(e *created) {}
	bus.Subscribe(h)
	bus.Subscribe(func(e *deleted) {})
	assert.Equal(t, 2, bus.SubscribersCount())

	bus.Unsubscribe(h)
	assert.Equal(t, 1, bus.SubscribersCount())

	bus.Clear()
	assert.Equal(t, 0, bus.SubscribersCount())

	assert.PanicsWithValue(t, ErrNotAFunction, func() { bus.Subscribe("not a func") })
}

func TestMatchSignature(t *testing.T) {
	assert.True(t, MatchSignature(func(*created) {}, []any{&created{}}))
	assert.False(t, MatchSignature(func(*created) {}, []any{&deleted{}}))
	assert.False(t, MatchSignature(func(*created, *deleted) {}, []any{&created{}}))
	assert.False(t, MatchSignature(func(int) {}, []any{nil}))
	assert.False(t, MatchSignature("x", []any{}))
}
