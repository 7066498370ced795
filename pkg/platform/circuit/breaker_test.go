package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("redis", WithFailureThreshold(3))
	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		b.Record(errBackend)
	}
	assert.Equal(t, StateClosed, b.State())

	require.True(t, b.Allow())
	from, to := b.Record(errBackend)
	assert.Equal(t, StateClosed, from)
	assert.Equal(t, StateOpen, to)
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New("redis", WithFailureThreshold(2))
	b.Record(errBackend)
	b.Record(nil)
	b.Record(errBackend)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenAdmitsOneTrial(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("kafka", WithFailureThreshold(1), WithCooldown(10*time.Second), WithClock(clock.now))
	b.Record(errBackend)
	require.Equal(t, StateOpen, b.State())

	clock.advance(9 * time.Second)
	assert.False(t, b.Allow())

	clock.advance(time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "only one trial while half-open")

	from, to := b.Record(nil)
	assert.Equal(t, StateHalfOpen, from)
	assert.Equal(t, StateClosed, to)
	assert.True(t, b.Allow())
}

func TestBreakerFailedTrialReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("postgres", WithFailureThreshold(1), WithCooldown(time.Second), WithClock(clock.now))
	b.Record(errBackend)
	clock.advance(time.Second)
	require.True(t, b.Allow())

	_, to := b.Record(errBackend)
	assert.Equal(t, StateOpen, to)
	assert.False(t, b.Allow(), "cooldown restarts from the failed trial")

	b.Reset()
	assert.True(t, b.Allow())
}
