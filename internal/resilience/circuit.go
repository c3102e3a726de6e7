// Package resilience provides retry and circuit breaker primitives for
// the outbound API clients (model invocations and web search).
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// CircuitState is the breaker's position.
type CircuitState int

const (
	// CircuitClosed passes calls through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until the reset timeout elapses.
	CircuitOpen
	// CircuitHalfOpen lets probe calls through to test recovery.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen rejects a call while the breaker is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// CircuitBreakerConfig tunes a breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold opens the breaker after this many consecutive
	// failures.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open before admitting
	// a probe.
	ResetTimeout time.Duration

	// OnStateChange observes transitions.
	OnStateChange func(from, to CircuitState)
}

// DefaultCircuitBreakerConfig matches the search backends: five strikes,
// half a minute out.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
}

// CircuitBreaker guards one backend. A run of failures opens it; after
// ResetTimeout a single successful probe closes it again, and a failed
// probe reopens it.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
}

// NewCircuitBreaker builds a closed breaker, filling zero config fields
// with defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// ExecuteVal runs fn through the breaker, returning ErrCircuitOpen
// without calling fn while the breaker is open.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !cb.admit() {
		return zero, ErrCircuitOpen
	}
	val, err := fn(ctx)
	cb.observe(err)
	if err != nil {
		return zero, err
	}
	return val, nil
}

// State reports the breaker's position, surfacing the pending half-open
// transition once the reset timeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) admit() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != CircuitOpen {
		return true
	}
	if cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		cb.shift(CircuitHalfOpen)
		return true
	}
	return false
}

func (cb *CircuitBreaker) observe(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == CircuitHalfOpen {
			cb.shift(CircuitClosed)
		}
		return
	}

	cb.failures++
	cb.openedAt = cb.now()
	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.shift(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.shift(CircuitOpen)
	}
}

func (cb *CircuitBreaker) shift(to CircuitState) {
	from := cb.state
	cb.state = to
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(from, to)
	}
}
