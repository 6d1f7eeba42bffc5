package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpenCB = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Call(service func() error) error
	State() Status
	Reset()
}

type Config struct {
	// RecordLength is the size of the tail of tracked calls.
	RecordLength int `envconfig:"CB_RECORD_LENGTH" default:"100"`
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `envconfig:"CB_TIMEOUT" default:"1s"`
	// Percentile of failed calls in the tail that opens the breaker.
	Percentile float64 `envconfig:"CB_PERCENTILE" default:"0.2"`
	// RecoveryRequests successful half-open calls close the breaker.
	RecoveryRequests int `envconfig:"CB_RECOVERY_REQUESTS" default:"2"`
}

type Option func(cb *circuitBreaker)

// WithFailurePredicate decides which errors count against the breaker.
// By default every non-nil error does.
func WithFailurePredicate(isFailure func(err error) bool) Option {
	return func(cb *circuitBreaker) {
		cb.isFailure = isFailure
	}
}

func WithClock(now func() time.Time) Option {
	return func(cb *circuitBreaker) {
		cb.now = now
	}
}

type circuitBreaker struct {
	mu    sync.Mutex
	state Status
	cfg   Config

	lastAttemptedAt time.Time
	// buffer is a ring of call results, true means failed.
	buffer       []bool
	pos          int
	successCount int

	isFailure func(err error) bool
	now       func() time.Time
}

func New(cfg Config, opts ...Option) CircuitBreaker {
	if cfg.RecordLength <= 0 {
		cfg.RecordLength = 1
	}
	cb := &circuitBreaker{
		state:     Closed,
		cfg:       cfg,
		buffer:    make([]bool, cfg.RecordLength),
		isFailure: func(err error) bool { return err != nil },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

func (cb *circuitBreaker) Call(service func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.lastAttemptedAt) > cb.cfg.Timeout {
			cb.state = HalfOpen
			cb.successCount = 0
		} else {
			cb.mu.Unlock()
			return ErrOpenCB
		}
	}
	cb.mu.Unlock()

	err := service()
	failed := cb.isFailure(err)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.buffer[cb.pos] = failed
	cb.pos = (cb.pos + 1) % cb.cfg.RecordLength

	if cb.state == HalfOpen {
		if failed {
			cb.trip()
			return err
		}
		cb.successCount++
		if cb.successCount >= cb.cfg.RecoveryRequests {
			cb.reset()
		}
		return err
	}

	fails := 0
	for _, f := range cb.buffer {
		if f {
			fails++
		}
	}
	if fails > 0 && float64(fails)/float64(cb.cfg.RecordLength) >= cb.cfg.Percentile {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successCount = 0
	cb.lastAttemptedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.buffer {
		cb.buffer[i] = false
	}
	cb.successCount = 0
	cb.pos = 0
	cb.state = Closed
}
