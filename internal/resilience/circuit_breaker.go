package resilience

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int32

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold"` // consecutive failures before opening
	RecoveryTimeout  time.Duration `json:"recovery_timeout"`  // wait before a trial call
	SuccessThreshold int           `json:"success_threshold"` // trial successes needed to close
}

// CircuitBreaker stops calling a failing dependency for a while so callers
// fail fast instead of waiting on it.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	clock  clockwork.Clock

	mu          sync.Mutex
	state       CircuitBreakerState
	failures    int
	successes   int
	nextAttempt time.Time
	inTrial     bool // a half-open trial call is in flight
}

// NewCircuitBreaker creates a new circuit breaker, filling zero config values
// with defaults. A nil clock means the real clock.
func NewCircuitBreaker(config CircuitBreakerConfig, clock clockwork.Clock) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &CircuitBreaker{
		config: config,
		clock:  clock,
		state:  StateClosed,
	}
}

// Call executes fn unless the circuit is open. While half-open only one
// trial call runs at a time; concurrent callers are rejected until it ends.
func (cb *CircuitBreaker) Call(fn func() error) error {
	trial, err := cb.allow()
	if err != nil {
		return err
	}

	err = fn()
	if err != nil {
		cb.onFailure(trial)
		return err
	}

	cb.onSuccess(trial)
	return nil
}

// allow admits a call and reports whether it is the half-open trial
func (cb *CircuitBreaker) allow() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.clock.Now().Before(cb.nextAttempt) {
			return false, NewCircuitBreakerError("circuit breaker is open", cb.state)
		}
		cb.state = StateHalfOpen
		cb.successes = 0
	case StateHalfOpen:
		if cb.inTrial {
			return false, NewCircuitBreakerError("circuit breaker is half-open, trial call in flight", cb.state)
		}
	default:
		return false, nil
	}

	cb.inTrial = true
	return true, nil
}

// onFailure handles failure events
func (cb *CircuitBreaker) onFailure(trial bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial {
		cb.inTrial = false
	}
	cb.failures++
	cb.successes = 0

	if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.nextAttempt = cb.clock.Now().Add(cb.config.RecoveryTimeout)
	}
}

// onSuccess handles success events. Only trial calls count towards closing.
func (cb *CircuitBreaker) onSuccess(trial bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if trial {
		cb.inTrial = false
	}

	if trial && cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = StateClosed
		}
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.inTrial = false
}

// CircuitBreakerError is returned when a call is rejected by an open circuit
type CircuitBreakerError struct {
	Message string
	State   CircuitBreakerState
}

func (e *CircuitBreakerError) Error() string {
	return e.Message
}

// NewCircuitBreakerError creates a new circuit breaker error
func NewCircuitBreakerError(message string, state CircuitBreakerState) *CircuitBreakerError {
	return &CircuitBreakerError{
		Message: message,
		State:   state,
	}
}
