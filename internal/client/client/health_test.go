package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func healthBackend(t *testing.T, status int, probes *atomic.Int32) string {
	t.Helper()
	srv := newBackend(t, func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			probes.Add(1)
			w.WriteHeader(status)
		})
	})
	return srv.URL
}

func TestHealthChecker_Throttles(t *testing.T) {
	var probes atomic.Int32
	c := newTestClient(t, healthBackend(t, http.StatusOK, &probes), credentials.NewMemoryStore())
	clock := newFakeClock()
	h := NewHealthChecker(c, WithHealthClock(clock.Now))
	ctx := context.Background()

	assert.True(t, h.IsServerAvailable(ctx))
	assert.True(t, h.IsServerAvailable(ctx))
	clock.Advance(29 * time.Second)
	assert.True(t, h.IsServerAvailable(ctx))
	assert.EqualValues(t, 1, probes.Load(), "one probe per interval")

	clock.Advance(time.Second)
	assert.True(t, h.IsServerAvailable(ctx))
	assert.EqualValues(t, 2, probes.Load())
}

func TestHealthChecker_AnyResponseIsReachable(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var probes atomic.Int32
			c := newTestClient(t, healthBackend(t, status, &probes), credentials.NewMemoryStore())
			h := NewHealthChecker(c)

			assert.True(t, h.IsServerAvailable(context.Background()))
			assert.NoError(t, h.Ping(context.Background()))
		})
	}
}

func TestHealthChecker_TransportFailureIsDown(t *testing.T) {
	var calls atomic.Int32
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errConnRefused
	})}
	c := newTestClient(t, "http://api.test", credentials.NewMemoryStore(), WithHTTPClient(hc))
	clock := newFakeClock()
	h := NewHealthChecker(c, WithHealthClock(clock.Now))

	assert.False(t, h.IsServerAvailable(context.Background()))
	assert.ErrorIs(t, h.Ping(context.Background()), ErrUnavailable)
	assert.EqualValues(t, 1, calls.Load(), "a negative answer is cached too")
}

func TestHealthChecker_Invalidate(t *testing.T) {
	var probes atomic.Int32
	c := newTestClient(t, healthBackend(t, http.StatusOK, &probes), credentials.NewMemoryStore())
	h := NewHealthChecker(c, WithHealthClock(newFakeClock().Now))

	h.IsServerAvailable(context.Background())
	h.Invalidate()
	h.IsServerAvailable(context.Background())

	assert.EqualValues(t, 2, probes.Load())
}

func TestHealthChecker_CancelledProbeKeepsCache(t *testing.T) {
	var probes atomic.Int32
	c := newTestClient(t, healthBackend(t, http.StatusOK, &probes), credentials.NewMemoryStore())
	h := NewHealthChecker(c, WithHealthClock(newFakeClock().Now))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, h.IsServerAvailable(ctx))

	assert.True(t, h.IsServerAvailable(context.Background()), "cancelled probe is not cached")
}

func TestHealthChecker_ConcurrentCallersShareProbe(t *testing.T) {
	var probes atomic.Int32
	c := newTestClient(t, healthBackend(t, http.StatusOK, &probes), credentials.NewMemoryStore())
	h := NewHealthChecker(c, WithHealthClock(newFakeClock().Now))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, h.IsServerAvailable(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, probes.Load())
}

func TestHealthChecker_Watch(t *testing.T) {
	var up atomic.Bool
	up.Store(true)

	srv := newBackend(t, func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if !up.Load() {
			return nil, errConnRefused
		}
		return http.DefaultTransport.RoundTrip(r)
	})}
	c := newTestClient(t, srv.URL, credentials.NewMemoryStore(), WithHTTPClient(hc))
	h := NewHealthChecker(c, WithCheckInterval(0))

	changes := make(chan bool, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Watch(ctx, 5*time.Millisecond, func(available bool) { changes <- available })
	}()

	require.True(t, <-changes, "first result is always reported")
	up.Store(false)
	require.False(t, <-changes)
	up.Store(true)
	require.True(t, <-changes)

	cancel()
	<-done
}
