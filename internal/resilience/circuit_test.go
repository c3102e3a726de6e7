package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testClock is a manually advanced clock for breaker timeout tests.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *testClock) {
	clock := &testClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
	cb.now = clock.now
	return cb, clock
}

func failCall(cb *CircuitBreaker) error {
	_, err := ExecuteVal(context.Background(), cb, func(context.Context) (int, error) {
		return 0, errors.New("backend down")
	})
	return err
}

func okCall(cb *CircuitBreaker) (int, error) {
	return ExecuteVal(context.Background(), cb, func(context.Context) (int, error) {
		return 7, nil
	})
}

func TestExecuteVal_PassesValueThrough(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	val, err := okCall(cb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 7 {
		t.Errorf("val = %d, want 7", val)
	}
	if got := cb.State(); got != CircuitClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	for i := 0; i < 3; i++ {
		if err := failCall(cb); errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d rejected before threshold", i+1)
		}
	}
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("state = %v, want open", got)
	}
	if err := failCall(cb); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	_ = failCall(cb)
	_ = failCall(cb)
	if _, err := okCall(cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = failCall(cb)
	_ = failCall(cb)
	if got := cb.State(); got != CircuitClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestBreaker_ProbeAfterResetTimeoutCloses(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Minute)
	_ = failCall(cb)
	_ = failCall(cb)
	if err := failCall(cb); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected rejection while open, got %v", err)
	}

	clock.advance(time.Minute)
	if got := cb.State(); got != CircuitHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}
	if _, err := okCall(cb); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := cb.State(); got != CircuitClosed {
		t.Errorf("state = %v, want closed after probe", got)
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Minute)
	_ = failCall(cb)
	_ = failCall(cb)

	clock.advance(time.Minute)
	if err := failCall(cb); errors.Is(err, ErrCircuitOpen) {
		t.Fatal("probe should have been admitted")
	}
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("state = %v, want open after failed probe", got)
	}
	if err := failCall(cb); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreaker_OnStateChangeObservesTransitions(t *testing.T) {
	type hop struct{ from, to CircuitState }
	var hops []hop

	clock := &testClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		OnStateChange:    func(from, to CircuitState) { hops = append(hops, hop{from, to}) },
	})
	cb.now = clock.now

	_ = failCall(cb)
	clock.advance(time.Minute)
	_, _ = okCall(cb)

	want := []hop{
		{CircuitClosed, CircuitOpen},
		{CircuitOpen, CircuitHalfOpen},
		{CircuitHalfOpen, CircuitClosed},
	}
	if len(hops) != len(want) {
		t.Fatalf("hops = %v, want %v", hops, want)
	}
	for i := range want {
		if hops[i] != want[i] {
			t.Errorf("hop %d = %v, want %v", i, hops[i], want[i])
		}
	}
}

func TestNewCircuitBreaker_ZeroConfigGetsDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	def := DefaultCircuitBreakerConfig()
	if cb.cfg.FailureThreshold != def.FailureThreshold {
		t.Errorf("threshold = %d, want %d", cb.cfg.FailureThreshold, def.FailureThreshold)
	}
	if cb.cfg.ResetTimeout != def.ResetTimeout {
		t.Errorf("reset = %v, want %v", cb.cfg.ResetTimeout, def.ResetTimeout)
	}
}

func TestCircuitState_String(t *testing.T) {
	cases := map[CircuitState]string{
		CircuitClosed:    "closed",
		CircuitOpen:      "open",
		CircuitHalfOpen:  "half-open",
		CircuitState(99): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
