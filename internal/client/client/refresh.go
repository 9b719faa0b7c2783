package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
)

// refresher makes token refresh single-flight: while one refresh runs, every
// other caller subscribes to its outcome instead of starting another.
// Subscribers are notified in the order they subscribed.
type refresher struct {
	do func(ctx context.Context) string

	mu       sync.Mutex
	inflight bool
	waiters  []chan string
}

func newRefresher(do func(ctx context.Context) string) *refresher {
	return &refresher{do: do}
}

// refresh returns the new access token, or "" when the refresh failed.
// An error is only returned when ctx ends while waiting for someone else's
// refresh; the refresh itself keeps running for the other subscribers.
func (r *refresher) refresh(ctx context.Context) (string, error) {
	ch := make(chan string, 1)

	r.mu.Lock()
	r.waiters = append(r.waiters, ch)
	if r.inflight {
		r.mu.Unlock()
		select {
		case token := <-ch:
			return token, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.inflight = true
	r.mu.Unlock()

	r.lead(ctx)
	return <-ch, nil
}

// lead runs the refresh and always settles the cycle, even if do panics.
func (r *refresher) lead(ctx context.Context) {
	token := ""
	defer func() { r.settle(token) }()
	token = r.do(context.WithoutCancel(ctx))
}

// settle resets the in-flight state and hands token to every subscriber.
func (r *refresher) settle(token string) {
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.inflight = false
	r.mu.Unlock()

	for _, w := range waiters {
		w <- token
	}
}

// refreshSession calls the refresh endpoint with cookies only (no bearer
// token) and persists the new session. On any failure the stored session is
// cleared and "" is returned.
func (c *HTTPClient) refreshSession(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	log := c.log.With("endpoint", c.refreshPath)
	log.Info(ctx, "refreshing session")

	sess, err := c.store.Get(ctx)
	if err != nil {
		log.Error(ctx, "failed to read session before refresh", "error", err)
		c.clearSession(ctx, log)
		return ""
	}

	pair, err := c.postRefresh(ctx, sess)
	if err != nil {
		log.Warn(ctx, "session refresh failed", "error", err)
		c.clearSession(ctx, log)
		return ""
	}

	next := sess
	next.AccessToken = pair.Access()
	if pair.RefreshToken != "" {
		next.RefreshToken = pair.RefreshToken
	}
	if err := c.store.Set(ctx, next); err != nil {
		log.Error(ctx, "failed to persist refreshed session", "error", err)
	}

	log.Info(ctx, "session refreshed")
	return next.AccessToken
}

func (c *HTTPClient) postRefresh(ctx context.Context, sess models.Session) (models.TokenPair, error) {
	var pair models.TokenPair

	target, err := c.resolve(c.refreshPath, nil)
	if err != nil {
		return pair, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return pair, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, c.newRequestID())
	c.attachRefreshCookie(req, sess)

	resp, err := c.http.Do(req)
	if err != nil {
		return pair, newNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pair, newNetworkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pair, newServerError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, &pair); err != nil {
		return pair, err
	}
	if pair.Access() == "" {
		return pair, common.ErrInvalidToken
	}
	return pair, nil
}

// attachRefreshCookie sends the stored refresh token as a cookie unless the
// jar already carries one for this URL.
func (c *HTTPClient) attachRefreshCookie(req *http.Request, sess models.Session) {
	if sess.RefreshToken == "" {
		return
	}
	if c.http.Jar != nil {
		for _, ck := range c.http.Jar.Cookies(req.URL) {
			if ck.Name == common.RefreshTokenCookieName {
				return
			}
		}
	}
	req.AddCookie(&http.Cookie{Name: common.RefreshTokenCookieName, Value: sess.RefreshToken})
}
