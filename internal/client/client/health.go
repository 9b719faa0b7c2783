package client

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultHealthPath     = "/health"
	DefaultHealthTimeout  = 5 * time.Second
	DefaultHealthInterval = 30 * time.Second
)

// HealthChecker answers "is the backend reachable?" and probes the health
// endpoint at most once per interval. Any HTTP response counts as
// reachable; only a transport failure marks the backend as down.
type HealthChecker struct {
	client   *HTTPClient
	path     string
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	available bool
	checkedAt time.Time
}

type HealthOption func(*HealthChecker)

func WithHealthPath(p string) HealthOption {
	return func(h *HealthChecker) {
		if p != "" {
			h.path = p
		}
	}
}

func WithHealthTimeout(d time.Duration) HealthOption {
	return func(h *HealthChecker) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func WithCheckInterval(d time.Duration) HealthOption {
	return func(h *HealthChecker) {
		if d >= 0 {
			h.interval = d
		}
	}
}

func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthChecker) { h.now = now }
}

func NewHealthChecker(c *HTTPClient, opts ...HealthOption) *HealthChecker {
	h := &HealthChecker{
		client:   c,
		path:     DefaultHealthPath,
		timeout:  DefaultHealthTimeout,
		interval: DefaultHealthInterval,
		now:      time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// IsServerAvailable returns the cached answer while it is fresh and probes
// otherwise. Concurrent callers share a single probe.
func (h *HealthChecker) IsServerAvailable(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if !h.checkedAt.IsZero() && now.Sub(h.checkedAt) < h.interval {
		return h.available
	}

	available := h.probe(ctx)
	if ctx.Err() != nil {
		// cancelled by the caller; the result says nothing about the server
		return h.available
	}

	h.available = available
	h.checkedAt = now
	return available
}

// Ping is IsServerAvailable as an error, for callers that branch on errors.
func (h *HealthChecker) Ping(ctx context.Context) error {
	if !h.IsServerAvailable(ctx) {
		return ErrUnavailable
	}
	return nil
}

// Invalidate forces the next IsServerAvailable call to probe.
func (h *HealthChecker) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkedAt = time.Time{}
}

// Watch checks availability every interval and calls onChange on the first
// result and on every transition. It returns when ctx is done.
func (h *HealthChecker) Watch(ctx context.Context, interval time.Duration, onChange func(available bool)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	first := true
	last := false
	check := func() {
		available := h.IsServerAvailable(ctx)
		if ctx.Err() != nil {
			return
		}
		if first || available != last {
			first = false
			last = available
			onChange(available)
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

func (h *HealthChecker) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	target, err := h.client.resolve(h.path, nil)
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}

	resp, err := h.client.http.Do(req)
	if err != nil {
		h.client.log.Warn(ctx, "health check failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return true
}
