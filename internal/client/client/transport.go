package client

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/common"
	"github.com/sethvargo/go-retry"
)

// linearBackoff waits delay, 2*delay, 3*delay, ... between attempts.
func linearBackoff(delay time.Duration) retry.Backoff {
	var n int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * delay, false
	})
}

// send performs the physical attempts of a call, retrying transport failures
// up to c.retries times. Any HTTP response, whatever its status, ends the loop.
//
// When the caller's ctx is done the transport error is returned untouched and
// nothing is retried. A per-attempt timeout is retried like any other
// transport failure. Exhausting the budget yields a NETWORK_ERROR.
func (c *HTTPClient) send(ctx context.Context, cl *call, token string) (*response, error) {
	backoff := retry.WithMaxRetries(uint64(c.retries), linearBackoff(c.retryDelay))

	var resp *response
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := c.attempt(ctx, cl, token)
		if err == nil {
			resp = r
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		cl.log.Warn(ctx, "request attempt failed", "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		cl.log.Error(ctx, "request failed, retries exhausted", "attempts", attempt, "error", err)
		return nil, newNetworkError(err)
	}
	return resp, nil
}

// attempt runs a single round trip bounded by the request timeout and reads
// the whole body.
func (c *HTTPClient) attempt(ctx context.Context, cl *call, token string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req := cl.template.Clone(ctx)
	if cl.payload != nil {
		req.Body = io.NopCloser(bytes.NewReader(cl.payload))
		req.ContentLength = int64(len(cl.payload))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(cl.payload)), nil
		}
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &response{status: resp.StatusCode, body: body}, nil
}
