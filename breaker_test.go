package breaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/donnigundala/dg-breaker/drivers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockDriver is a mock breaker.Driver, in the teacher's testify/mock style.
type mockDriver struct {
	mock.Mock
}

func (m *mockDriver) Load(ctx context.Context, key string) (breaker.Record, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(breaker.Record), args.Error(1)
}

func (m *mockDriver) New(ctx context.Context, key string) (breaker.Record, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(breaker.Record), args.Error(1)
}

func (m *mockDriver) Update(ctx context.Context, key string, fields breaker.Fields) error {
	return m.Called(ctx, key, fields).Error(0)
}

func (m *mockDriver) Failure(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *mockDriver) Open(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockDriver) Close(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockDriver) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockDriver) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockDriver) Expire(ctx context.Context, key string, checkin float64) error {
	return m.Called(ctx, key, checkin).Error(0)
}

func (m *mockDriver) Now() float64 {
	args := m.Called()
	return args.Get(0).(float64)
}

func succeedingSubject(ctx context.Context, args ...any) (any, error) {
	return "ok", nil
}

func failingSubject(errToRaise error) breaker.Subject {
	return func(ctx context.Context, args ...any) (any, error) {
		return nil, errToRaise
	}
}

// Scenario: trip-and-recover. A subject fails maxFailures times, tripping
// the breaker; further calls are rejected until the cooldown (plus jitter,
// here forced to 0) elapses, at which point a probe is admitted.
func TestBreaker_TripAndRecover(t *testing.T) {
	upstream := errors.New("upstream unavailable")
	driver := memory.NewDriver(memory.Config{})

	failing := true
	subject := func(ctx context.Context, args ...any) (any, error) {
		if failing {
			return nil, upstream
		}
		return "recovered", nil
	}

	b, err := breaker.New(breaker.Config{
		Driver:   driver,
		Subject:  subject,
		Key:      "orders-api",
		Failures: 3,
		Timeout:  10 * time.Millisecond,
		Jitter:   breaker.ConstantJitter(0),
	})
	require.NoError(t, err)

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.Call(ctx)
		assert.ErrorIs(t, err, upstream)
	}

	// Threshold reached: next call trips the breaker and is rejected.
	_, err = b.Call(ctx)
	assert.ErrorIs(t, err, breaker.ErrCircuitBreakerOpen)
	assert.Equal(t, breaker.StatusOpen, b.Snapshot().Status)

	// Still within cooldown: rejected without invoking the subject.
	_, err = b.Call(ctx)
	assert.ErrorIs(t, err, breaker.ErrCircuitBreakerOpen)

	time.Sleep(15 * time.Millisecond)
	failing = false

	result, err := b.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, breaker.StatusClosed, b.Snapshot().Status)
	assert.Equal(t, 0, b.Snapshot().Failures)
}

// Scenario: a key pre-loaded as OPEN (e.g. written by another process) is
// probed as soon as the cooldown window allows, without this Breaker ever
// having observed a failure itself.
func TestBreaker_PreloadedOpenKeyIsProbed(t *testing.T) {
	driver := memory.NewDriver(memory.Config{})
	ctx := context.Background()

	_, err := driver.New(ctx, "orders-api")
	require.NoError(t, err)
	require.NoError(t, driver.Open(ctx, "orders-api"))

	b, err := breaker.New(breaker.Config{
		Driver:   driver,
		Subject:  succeedingSubject,
		Key:      "orders-api",
		Timeout:  1 * time.Millisecond,
		Jitter:   breaker.ConstantJitter(0),
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	result, err := b.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, breaker.StatusClosed, b.Snapshot().Status)
}

// Scenario: the backing store itself is unavailable. Load fails with a
// BackendError, which must satisfy errors.Is(err, ErrCircuitBreakerOpen).
func TestBreaker_BackendOutageLooksLikeOpen(t *testing.T) {
	md := new(mockDriver)
	backendErr := breaker.NewBackendError("redis", errors.New("dial tcp: timeout"))
	md.On("Now").Return(float64(1700000000))
	md.On("Expire", mock.Anything, "orders-api", mock.Anything).Return(nil)
	md.On("Load", mock.Anything, "orders-api").Return(breaker.Record{}, backendErr)

	b, err := breaker.New(breaker.Config{
		Driver:  md,
		Subject: succeedingSubject,
		Key:     "orders-api",
	})
	require.NoError(t, err)

	_, err = b.Call(context.Background())
	assert.ErrorIs(t, err, breaker.ErrCircuitBreakerOpen)
	md.AssertExpectations(t)
}

// Scenario: when driver.Failure itself fails with a backend problem, that
// error propagates instead of the subject's original error.
func TestBreaker_DriverFailureErrorPropagatesInsteadOfOriginal(t *testing.T) {
	subjectErr := errors.New("subject exploded")
	backendErr := breaker.NewBackendError("redis", errors.New("connection reset"))

	md := new(mockDriver)
	md.On("Now").Return(float64(1700000000))
	md.On("Expire", mock.Anything, "orders-api", mock.Anything).Return(nil)
	md.On("Load", mock.Anything, "orders-api").Return(breaker.Record{Status: breaker.StatusClosed}, nil)
	md.On("Failure", mock.Anything, "orders-api").Return(0, backendErr)

	b, err := breaker.New(breaker.Config{
		Driver:  md,
		Subject: failingSubject(subjectErr),
		Key:     "orders-api",
	})
	require.NoError(t, err)

	_, err = b.Call(context.Background())
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, subjectErr)
	md.AssertExpectations(t)
}

// Scenario: Update with no fields set is rejected before it ever reaches a
// driver's backing store.
func TestBreaker_UpdateWithNoFieldsIsInvalid(t *testing.T) {
	driver := memory.NewDriver(memory.Config{})
	err := driver.Update(context.Background(), "orders-api", breaker.Fields{})
	assert.ErrorIs(t, err, breaker.ErrInvalidArguments)
}

// Scenario: two Breakers over the same in-memory driver but different keys
// never interfere with each other's state — the multi-tenant namespacing
// property spec.md requires of the shared backend.
func TestBreaker_IndependentKeysDoNotInterfere(t *testing.T) {
	driver := memory.NewDriver(memory.Config{})
	ctx := context.Background()

	upstream := errors.New("boom")
	a, err := breaker.New(breaker.Config{
		Driver: driver, Subject: failingSubject(upstream), Key: "service-a", Failures: 1,
	})
	require.NoError(t, err)
	other, err := breaker.New(breaker.Config{
		Driver: driver, Subject: succeedingSubject, Key: "service-b",
	})
	require.NoError(t, err)

	_, err = a.Call(ctx)
	assert.ErrorIs(t, err, upstream)
	_, err = a.Call(ctx)
	assert.ErrorIs(t, err, breaker.ErrCircuitBreakerOpen)

	result, err := other.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, breaker.StatusClosed, other.Snapshot().Status)
}

// Scenario: a seeded Jitter produces a reproducible sample sequence, so
// tests that need deterministic cooldown padding can rely on it.
func TestSeededJitter_IsDeterministic(t *testing.T) {
	a := breaker.NewSeededJitter(42)
	b := breaker.NewSeededJitter(42)

	for i := 0; i < 5; i++ {
		av, bv := a(), b()
		assert.Equal(t, av, bv)
		assert.GreaterOrEqual(t, av, 0.0)
		assert.LessOrEqual(t, av, 10.0)
	}
}

func TestNew_RequiresDriverSubjectAndKey(t *testing.T) {
	_, err := breaker.New(breaker.Config{})
	assert.ErrorIs(t, err, breaker.ErrInvalidArguments)
}

func TestInvoke_TypeAssertsResult(t *testing.T) {
	driver := memory.NewDriver(memory.Config{})
	subject := func(ctx context.Context, args ...any) (any, error) {
		return 42, nil
	}
	b, err := breaker.New(breaker.Config{Driver: driver, Subject: subject, Key: "orders-api"})
	require.NoError(t, err)

	result, err := breaker.Invoke[int](context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestInvoke_TypeMismatchIsAnError(t *testing.T) {
	driver := memory.NewDriver(memory.Config{})
	subject := func(ctx context.Context, args ...any) (any, error) {
		return "not an int", nil
	}
	b, err := breaker.New(breaker.Config{Driver: driver, Subject: subject, Key: "orders-api"})
	require.NoError(t, err)

	_, err = breaker.Invoke[int](context.Background(), b)
	assert.Error(t, err)
}
