package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/stretchr/testify/assert"
)

// scriptedPinger fails the first `failures` pings.
type scriptedPinger struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *scriptedPinger) PingContext(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func (p *scriptedPinger) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fixedBackoff time.Duration

func (f fixedBackoff) Backoff(int) time.Duration { return time.Duration(f) }

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, 100*time.Millisecond, b.Backoff(0))
	assert.Equal(t, 200*time.Millisecond, b.Backoff(1))
	assert.Equal(t, 800*time.Millisecond, b.Backoff(3))
	assert.Equal(t, time.Second, b.Backoff(10))

	jittered := ExponentialBackoff{Base: time.Second, Max: time.Second, Jitter: 0.5}
	for i := 0; i < 20; i++ {
		d := jittered.Backoff(0)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, time.Second)
	}
}

func TestMonitor_Check(t *testing.T) {
	p := &scriptedPinger{failures: 1}
	m := NewMonitor(p, fixedBackoff(time.Millisecond), time.Second)

	err := m.Check(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.False(t, m.Available())

	assert.NoError(t, m.Check(context.Background()))
	assert.True(t, m.Available())
}

func TestMonitor_BreakerStopsPinging(t *testing.T) {
	p := &scriptedPinger{failures: 100}
	m := NewMonitor(p, fixedBackoff(time.Millisecond), time.Minute)

	for i := 0; i < 5; i++ {
		_ = m.Check(context.Background())
	}
	assert.Equal(t, 3, p.Calls())
	assert.False(t, m.Available())
}

func TestMonitor_RunReconnects(t *testing.T) {
	p := &scriptedPinger{failures: 2}
	m := NewMonitor(p, fixedBackoff(time.Millisecond), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	assert.Eventually(t, m.Available, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, p.Calls(), 3)
}

func TestMonitor_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(m *Monitor) int {
		router := gin.New()
		router.Use(m.Middleware())
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w.Code
	}

	t.Run("down database is 503", func(t *testing.T) {
		m := NewMonitor(&scriptedPinger{failures: 100}, fixedBackoff(time.Millisecond), time.Minute)
		assert.Equal(t, http.StatusServiceUnavailable, serve(m))
	})

	t.Run("recovered database passes through", func(t *testing.T) {
		m := NewMonitor(&scriptedPinger{failures: 1}, fixedBackoff(time.Millisecond), time.Minute)
		_ = m.Check(context.Background())
		assert.Equal(t, http.StatusNoContent, serve(m))
		assert.True(t, m.Available())
	})
}
