package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote failed")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func run(b *Breaker, fail bool) error {
	return b.Execute(context.Background(), func(context.Context) error {
		if fail {
			return errRemote
		}
		return nil
	})
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		requests      []bool // true = failure
		expectedState State
	}{
		{"stays closed on successes", []bool{false, false, false}, StateClosed},
		{"opens after consecutive failures", []bool{true, true, true}, StateOpen},
		{"success resets the streak", []bool{true, true, false, true}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", Settings{
				ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
			})
			for _, fail := range tt.requests {
				_ = run(b, fail)
			}
			assert.Equal(t, tt.expectedState, b.State())
		})
	}
}

func TestBreakerRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var changes []string
	b := New("fetch", Settings{
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, from.String()+"->"+to.String())
		},
	})

	assert.ErrorIs(t, run(b, true), errRemote)
	assert.ErrorIs(t, run(b, false), ErrCircuitOpen)

	clock.Advance(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, run(b, false))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, changes)
}

func TestBreakerHalfOpenLimit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("fetch", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})
	_ = run(b, true)
	clock.Advance(2 * time.Second)

	err := b.Execute(context.Background(), func(context.Context) error {
		// a second call while the trial is in flight is rejected
		assert.ErrorIs(t, run(b, false), ErrTooManyRequests)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	errClient := errors.New("not found")
	b := New("fetch", Settings{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		IsFailure:   func(err error) bool { return !errors.Is(err, errClient) },
	})

	err := b.Execute(context.Background(), func(context.Context) error { return errClient })
	assert.ErrorIs(t, err, errClient)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().TotalSuccesses)
}

func TestBreakerCancellationNotCounted(t *testing.T) {
	b := New("fetch", Settings{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	ctx, cancel := context.WithCancel(context.Background())
	err := b.Execute(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{}, b.Counts())

	assert.ErrorIs(t, b.Execute(ctx, func(context.Context) error { return nil }), context.Canceled)
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("fetch", Settings{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	assert.Panics(t, func() {
		_ = b.Execute(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
