package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is rejecting calls outright.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	// StateClosed - normal operation, calls pass through
	StateClosed State = iota

	// StateOpen - dependency considered down, calls fail immediately
	StateOpen

	// StateHalfOpen - probing whether the dependency recovered
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Config struct {
	MaxFailures     int           // consecutive failures before opening (default 5)
	CoolDown        time.Duration // how long to stay open (default 30s)
	HalfOpenSuccess int           // successes needed in half-open to close (default 1)
}

// Breaker guards a flaky dependency (here: the managed inference API) so a
// sustained outage fails fast instead of tying up request handlers in
// timeouts.
type Breaker struct {
	mu              sync.Mutex
	state           State
	failureCount    int
	successCount    int
	lastFailureTime time.Time

	maxFailures     int
	coolDown        time.Duration
	halfOpenSuccess int
}

func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 30 * time.Second
	}
	if cfg.HalfOpenSuccess <= 0 {
		cfg.HalfOpenSuccess = 1
	}

	return &Breaker{
		state:           StateClosed,
		maxFailures:     cfg.MaxFailures,
		coolDown:        cfg.CoolDown,
		halfOpenSuccess: cfg.HalfOpenSuccess,
	}
}

// Do executes fn under breaker protection. isFailure decides whether an
// error counts against the breaker; pass nil to count every error. Client
// errors (bad input) should not trip the breaker.
func (b *Breaker) Do(fn func() error, isFailure func(error) bool) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if time.Since(b.lastFailureTime) > b.coolDown {
			b.state = StateHalfOpen
			b.successCount = 0
		} else {
			b.mu.Unlock()
			return ErrOpen
		}
	}
	b.mu.Unlock()

	err := fn()

	counts := err != nil && (isFailure == nil || isFailure(err))

	b.mu.Lock()
	defer b.mu.Unlock()

	if counts {
		b.onFailure()
	} else if err == nil {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) onFailure() {
	b.failureCount++
	b.lastFailureTime = time.Now()

	if b.state == StateHalfOpen || b.failureCount >= b.maxFailures {
		b.state = StateOpen
		b.successCount = 0
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.halfOpenSuccess {
			b.state = StateClosed
			b.failureCount = 0
		}
	case StateClosed:
		b.failureCount = 0
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
