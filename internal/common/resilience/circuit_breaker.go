package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/credauth/internal/common/clock"
	commonerrors "github.com/AlibekovAA/credauth/internal/common/errors"
	"github.com/AlibekovAA/credauth/internal/common/logger"
	"github.com/AlibekovAA/credauth/internal/observability/metrics"
)

// CircuitBreaker opens after Threshold consecutive failures and rejects
// calls with ErrCircuitOpen until ResetAfter has passed since the last one.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time

	threshold  int
	timeout    time.Duration
	resetAfter time.Duration
	isFailure  func(error) bool
	clock      clock.Clock
	name       string
	log        *logger.Logger
}

type CircuitBreakerConfig struct {
	Name       string
	Threshold  int
	Timeout    time.Duration
	ResetAfter time.Duration
	// IsFailure classifies errors. Errors it rejects (not-found, conflicts)
	// leave the breaker closed. Nil counts every error.
	IsFailure func(error) bool
	Clock     clock.Clock
	Logger    *logger.Logger
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		threshold:  cfg.Threshold,
		timeout:    cfg.Timeout,
		resetAfter: cfg.ResetAfter,
		isFailure:  cfg.IsFailure,
		clock:      cfg.Clock,
		name:       cfg.Name,
		log:        cfg.Logger,
	}
	if cb.clock == nil {
		cb.clock = clock.NewRealClock()
	}
	if cb.isFailure == nil {
		cb.isFailure = func(error) bool { return true }
	}
	return cb
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.openLocked()
}

func (cb *CircuitBreaker) openLocked() bool {
	if cb.failures < cb.threshold || cb.lastFailure.IsZero() {
		cb.setState(0)
		return false
	}
	if cb.clock.Since(cb.lastFailure) > cb.resetAfter {
		cb.failures = 0
		cb.lastFailure = time.Time{}
		cb.setState(0)
		return false
	}
	cb.setState(1)
	return true
}

func (cb *CircuitBreaker) setState(state float64) {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(state)
	}
}

// Call runs fn with the breaker's timeout unless the circuit is open.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if cb.IsOpen() {
		if cb.log != nil {
			cb.log.WithFields(ctx, logger.Fields{
				"action":  "circuit_open",
				"breaker": cb.name,
			}).Warn("circuit is open, rejecting call")
		}
		return commonerrors.ErrCircuitOpen
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil && cb.isFailure(err) {
		cb.failures++
		cb.lastFailure = cb.clock.Now()
		if cb.name != "" {
			metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
		}
		if cb.log != nil {
			cb.log.Warnf("circuit breaker [%s]: failure %d/%d recorded", cb.name, cb.failures, cb.threshold)
		}
		return err
	}

	cb.failures = 0
	cb.lastFailure = time.Time{}
	return err
}
