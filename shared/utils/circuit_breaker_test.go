package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func failNTimes(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		cb.Call(func() error { return errBoom })
	}
}

func TestCircuitBreaker_StaysClosedUnderThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	failNTimes(cb, 2)
	assert.Equal(t, StateClosed, cb.GetState())

	err := cb.Call(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	failNTimes(cb, 3)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	failNTimes(cb, 2)
	assert.NoError(t, cb.Call(func() error { return nil }))

	failNTimes(cb, 2)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_ProbeClosesAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	failNTimes(cb, 1)
	assert.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	err := cb.Call(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	failNTimes(cb, 1)
	time.Sleep(20 * time.Millisecond)

	err := cb.Call(func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)

	failNTimes(cb, 1)
	assert.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Call(func() error { return nil }))
}

func TestCircuitBreaker_PassesErrorThrough(t *testing.T) {
	cb := NewCircuitBreaker(5, time.Minute)

	err := cb.Call(func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
}
