package database

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/platform/metrics"
	"github.com/sony/gobreaker"
)

const (
	breakerName = "database"
	pingTimeout = 3 * time.Second
)

// Pinger is the part of *sql.DB the monitor needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RetryPolicy returns how long to wait before reconnect attempt n (0-based).
type RetryPolicy interface {
	Backoff(attempt int) time.Duration
}

// ExponentialBackoff doubles Base per attempt up to Max, then applies up to
// Jitter (0..1) of random reduction.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

func (b ExponentialBackoff) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	if d > b.Max {
		d = b.Max
	}
	if b.Jitter > 0 && d > 0 {
		d -= time.Duration(rand.Float64() * b.Jitter * float64(d))
	}
	return d
}

// Monitor owns the database connection state. It is safe for concurrent use.
type Monitor struct {
	db       Pinger
	policy   RetryPolicy
	interval time.Duration
	breaker  *gobreaker.CircuitBreaker
	up       atomic.Bool
}

func NewMonitor(db Pinger, policy RetryPolicy, interval time.Duration) *Monitor {
	m := &Monitor{db: db, policy: policy, interval: interval}
	m.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     interval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logger.Warn("Database circuit breaker state changed", logger.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.DatabaseUp.Set(0)
	return m
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// Available reports the result of the last check.
func (m *Monitor) Available() bool {
	return m.up.Load()
}

// Check pings through the breaker and records the outcome. While the breaker
// is open no ping is sent.
func (m *Monitor) Check(ctx context.Context) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return nil, m.db.PingContext(pctx)
	})
	m.setUp(err == nil)
	if err != nil {
		return fmt.Errorf("%w: database ping failed: %w", apperr.ErrUnavailable, err)
	}
	return nil
}

func (m *Monitor) setUp(up bool) {
	was := m.up.Swap(up)
	if up {
		metrics.DatabaseUp.Set(1)
	} else {
		metrics.DatabaseUp.Set(0)
	}
	if was != up {
		if up {
			logger.Info("Database connection established")
		} else {
			logger.Warn("Database connection lost")
		}
	}
}

// Run checks the database every interval and, after a failure, retries with
// the policy's backoff until it succeeds or ctx ends.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Check(ctx); err != nil {
			m.reconnect(ctx)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) reconnect(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		wait := m.policy.Backoff(attempt)
		logger.Warn("Retrying database connection", logger.Fields{"attempt": attempt + 1, "wait": wait.String()})
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if err := m.Check(ctx); err == nil {
			return
		}
	}
}

// Middleware rejects requests with 503 while the database is unavailable.
// A down state triggers one immediate check so recovery is noticed before the
// next tick.
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Available() {
			if err := m.Check(c.Request.Context()); err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"message": "Service temporarily unavailable",
					"details": "Database connection is not available",
				})
				return
			}
		}
		c.Next()
	}
}
