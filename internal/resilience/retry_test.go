package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestDoVal_FirstAttemptSucceeds(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(), func(context.Context) (string, error) {
		calls++
		return "reply", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "reply" {
		t.Errorf("val = %q, want %q", val, "reply")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, NewTransientError(errors.New("upstream busy"), 503)
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Errorf("val = %d, want 42", val)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoVal_PermanentErrorFailsFast(t *testing.T) {
	permanent := errors.New("bad request")
	var calls int
	_, err := DoVal(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	transient := NewTransientError(errors.New("flaky"), 502)
	var calls int
	_, err := DoVal(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		return 0, transient
	})
	if !errors.Is(err, transient) {
		t.Fatalf("err = %v, want %v", err, transient)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoVal_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	_, err := DoVal(ctx, fastConfig(), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("flaky"), 503)
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_CustomShouldRetry(t *testing.T) {
	special := errors.New("retry me")
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error) bool { return errors.Is(err, special) }

	var calls int
	val, err := DoVal(context.Background(), cfg, func(context.Context) (bool, error) {
		calls++
		if calls == 1 {
			return false, special
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !val || calls != 2 {
		t.Errorf("val = %v, calls = %d; want true, 2", val, calls)
	}
}

func TestDoVal_OnRetryReportsAttempts(t *testing.T) {
	var attempts []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }

	_, _ = DoVal(context.Background(), cfg, func(context.Context) (int, error) {
		return 0, NewTransientError(errors.New("flaky"), 503)
	})
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
}

func TestDoVal_ZeroConfigStillRuns(t *testing.T) {
	val, err := DoVal(context.Background(), RetryConfig{}, func(context.Context) (string, error) {
		return "once", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "once" {
		t.Errorf("val = %q, want %q", val, "once")
	}
}

func TestWithJitter_StaysWithinQuarter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := withJitter(base)
		if d < base || d > base+base/4 {
			t.Fatalf("jittered delay %v outside [%v, %v]", d, base, base+base/4)
		}
	}
}
