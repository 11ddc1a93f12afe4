// Package circuitbreaker stops calling a failing dependency for a while so
// callers fail fast instead of piling up behind it.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type State int

const (
	StateClosed State = iota
	StateOpen
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

var ErrOpen = errors.New("circuit breaker is open")

const (
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
	defaultProbes      = 1

	maxMaxFailures = 1000
	maxOpenTimeout = 10 * time.Minute
	maxProbes      = 100
)

type Config struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// OpenTimeout is how long the breaker stays open before letting probes through.
	OpenTimeout time.Duration
	// HalfOpenProbes is how many calls may run while half-open.
	HalfOpenProbes int
	OnStateChange  func(name string, from, to State)
}

type Metrics struct {
	Name            string    `json:"name"`
	State           string    `json:"state"`
	Failures        int       `json:"failures"`
	TotalRequests   int64     `json:"total_requests"`
	TotalFailures   int64     `json:"total_failures"`
	TotalSuccesses  int64     `json:"total_successes"`
	TotalRejected   int64     `json:"total_rejected"`
	StateChanges    int64     `json:"state_changes"`
	LastFailure     time.Time `json:"last_failure"`
	LastStateChange time.Time `json:"last_state_change"`
}

type CircuitBreaker struct {
	name          string
	maxFailures   int
	openTimeout   time.Duration
	probes        int
	onStateChange func(name string, from, to State)
	now           func() time.Time
	logger        *logrus.Logger

	mu       sync.Mutex
	state    State
	failures int
	inFlight int
	openedAt time.Time
	metrics  Metrics
}

func New(config Config, logger *logrus.Logger) *CircuitBreaker {
	config = sanitize(config, logger)
	return &CircuitBreaker{
		name:          config.Name,
		maxFailures:   config.MaxFailures,
		openTimeout:   config.OpenTimeout,
		probes:        config.HalfOpenProbes,
		onStateChange: config.OnStateChange,
		now:           time.Now,
		logger:        logger,
		state:         StateClosed,
		metrics:       Metrics{Name: config.Name},
	}
}

// sanitize replaces out of range settings with defaults or caps, logging each
// correction.
func sanitize(config Config, logger *logrus.Logger) Config {
	if config.Name == "" {
		config.Name = "unnamed"
		logger.Warn("Circuit breaker created without name, using 'unnamed'")
	}

	warn := func(field string, invalid, replacement any) {
		logger.WithFields(logrus.Fields{
			"circuit_breaker": config.Name,
			"field":           field,
			"invalid_value":   invalid,
			"using":           replacement,
		}).Warn("Invalid circuit breaker setting")
	}

	switch {
	case config.MaxFailures <= 0:
		warn("MaxFailures", config.MaxFailures, defaultMaxFailures)
		config.MaxFailures = defaultMaxFailures
	case config.MaxFailures > maxMaxFailures:
		warn("MaxFailures", config.MaxFailures, maxMaxFailures)
		config.MaxFailures = maxMaxFailures
	}

	switch {
	case config.OpenTimeout <= 0:
		warn("OpenTimeout", config.OpenTimeout.String(), defaultOpenTimeout.String())
		config.OpenTimeout = defaultOpenTimeout
	case config.OpenTimeout > maxOpenTimeout:
		warn("OpenTimeout", config.OpenTimeout.String(), maxOpenTimeout.String())
		config.OpenTimeout = maxOpenTimeout
	}

	switch {
	case config.HalfOpenProbes <= 0:
		warn("HalfOpenProbes", config.HalfOpenProbes, defaultProbes)
		config.HalfOpenProbes = defaultProbes
	case config.HalfOpenProbes > maxProbes:
		warn("HalfOpenProbes", config.HalfOpenProbes, maxProbes)
		config.HalfOpenProbes = maxProbes
	}

	return config
}

// Execute runs fn unless the breaker is open, in which case it returns ErrOpen
// without calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}

	err := fn()

	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.openTimeout {
			cb.metrics.TotalRejected++
			return ErrOpen
		}
		cb.setState(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.inFlight >= cb.probes {
			cb.metrics.TotalRejected++
			return ErrOpen
		}
		cb.inFlight++
	}

	cb.metrics.TotalRequests++
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.inFlight > 0 {
		cb.inFlight--
	}

	if err != nil {
		cb.metrics.TotalFailures++
		cb.metrics.LastFailure = cb.now()
		cb.failures++
		if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.failures >= cb.maxFailures) {
			cb.trip()
		}
		return
	}

	cb.metrics.TotalSuccesses++
	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) trip() {
	cb.openedAt = cb.now()
	cb.inFlight = 0
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.metrics.StateChanges++
	cb.metrics.LastStateChange = cb.now()

	cb.logger.WithFields(logrus.Fields{
		"circuit_breaker": cb.name,
		"from_state":      from.String(),
		"to_state":        to.String(),
	}).Info("Circuit breaker state changed")

	if cb.onStateChange != nil {
		go cb.notify(from, to)
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	defer func() {
		if r := recover(); r != nil {
			cb.logger.WithFields(logrus.Fields{
				"circuit_breaker": cb.name,
				"panic":           r,
			}).Error("Circuit breaker state change callback panicked")
		}
	}()
	cb.onStateChange(cb.name, from, to)
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	m := cb.metrics
	m.State = cb.state.String()
	m.Failures = cb.failures
	return m
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.setState(StateClosed)
	cb.failures = 0
	cb.inFlight = 0
	cb.openedAt = time.Time{}
}

func (cb *CircuitBreaker) String() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return fmt.Sprintf("CircuitBreaker(name=%s, state=%s, failures=%d/%d)",
		cb.name, cb.state, cb.failures, cb.maxFailures)
}
