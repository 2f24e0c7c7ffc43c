package composables

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseTx_NoPool(t *testing.T) {
	ctx := context.Background()

	_, err := UseTx(ctx)
	require.ErrorIs(t, err, ErrNoPool)

	_, err = UseExplicitTx(ctx)
	require.ErrorIs(t, err, ErrNoTx)

	_, err = BeginTx(ctx)
	require.ErrorIs(t, err, ErrNoPool)
}

func TestInTx_NoPool(t *testing.T) {
	called := false
	err := InTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrNoPool)
	assert.False(t, called)

	_, err = InTxResult(context.Background(), func(context.Context) (int, error) { return 1, nil })
	require.ErrorIs(t, err, ErrNoPool)
}

func TestWithPool_NilPool(t *testing.T) {
	_, err := UsePool(WithPool(context.Background(), nil))
	require.ErrorIs(t, err, ErrNoPool)
}

func TestUseLogger(t *testing.T) {
	fallback := UseLogger(context.Background())
	require.NotNil(t, fallback)
	assert.Equal(t, logrus.StandardLogger(), fallback.Logger)

	entry := logrus.NewEntry(logrus.New()).WithField("request-id", "abc")
	assert.Same(t, entry, UseLogger(WithLogger(context.Background(), entry)))
}

func TestParams(t *testing.T) {
	assert.Equal(t, "", UseRequestID(context.Background()))

	ctx := WithParams(context.Background(), &Params{IP: "10.0.0.1", RequestID: "req-1"})
	params, ok := UseParams(ctx)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", params.IP)
	assert.Equal(t, "req-1", UseRequestID(ctx))
}
