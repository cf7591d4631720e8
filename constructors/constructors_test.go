package constructors_test

import (
	"context"
	"errors"
	"testing"
	"time"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/donnigundala/dg-breaker/constructors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryBreaker_UsesReferenceDefaults(t *testing.T) {
	upstream := errors.New("boom")
	subject := func(ctx context.Context, args ...any) (any, error) {
		return nil, upstream
	}

	b, err := constructors.NewMemoryBreaker(subject, "orders-api", 0, 0)
	require.NoError(t, err)

	snap := b.Snapshot()
	assert.Equal(t, 5, snap.MaxFailures)
	assert.Equal(t, 10*time.Second, snap.Timeout)
}

func TestNewMemoryBreaker_TripsAfterConfiguredFailures(t *testing.T) {
	upstream := errors.New("boom")
	subject := func(ctx context.Context, args ...any) (any, error) {
		return nil, upstream
	}

	b, err := constructors.NewMemoryBreaker(subject, "orders-api", 2, 50*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := b.Call(ctx)
		assert.ErrorIs(t, err, upstream)
	}

	_, err = b.Call(ctx)
	assert.ErrorIs(t, err, breaker.ErrCircuitBreakerOpen)
}

func TestNewRedisBreaker_RequiresConnectionOrURL(t *testing.T) {
	subject := func(ctx context.Context, args ...any) (any, error) {
		return "ok", nil
	}

	_, err := constructors.NewRedisBreaker(subject, "orders-api", 0, 0, map[string]interface{}{})
	assert.ErrorIs(t, err, breaker.ErrInvalidArguments)
}
