package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/babeledit/internal/common"
	"github.com/dmitrijs2005/babeledit/internal/logging"
)

// Request describes one logical API call.
//
// Body is sent as JSON unless it is a *MultipartBody or RawBody, which are
// passed through unmodified with their own content type. Nil pointers of
// either kind send no body.
type Request struct {
	Method      string
	Header      http.Header
	Query       url.Values
	Body        any
	RequireAuth bool
}

// RawBody is a pre-encoded payload.
type RawBody struct {
	ContentType string
	Data        []byte
}

var emptyObject = []byte("{}")

// call is a logical request prepared for one or more physical attempts.
type call struct {
	template  *http.Request
	payload   []byte
	requestID string
	log       logging.Logger
}

type response struct {
	status int
	body   []byte
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Fetch performs req and decodes the response into a new T.
func Fetch[T any](ctx context.Context, c Client, endpoint string, req Request) (T, error) {
	var out T
	err := c.Do(ctx, endpoint, req, &out)
	return out, err
}

// Do performs req against endpoint and decodes the JSON response into out
// (a pointer, or nil to discard the body).
//
// Errors are *APIError values, except caller cancellation, which is returned
// as produced by the transport so errors.Is(err, context.Canceled) holds.
func (c *HTTPClient) Do(ctx context.Context, endpoint string, req Request, out any) error {
	sess, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if req.RequireAuth && !sess.HasToken() {
		return newNoTokenError()
	}

	cl, err := c.prepare(ctx, endpoint, req)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, cl, sess.AccessToken)
	if err != nil {
		return err
	}

	if sess.HasToken() && isAuthFailure(resp.status) {
		resp, err = c.recoverAuth(ctx, cl, resp)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

// recoverAuth handles a 401/403 received while a token was attached.
func (c *HTTPClient) recoverAuth(ctx context.Context, cl *call, resp *response) (*response, error) {
	if resp.status == http.StatusForbidden {
		if msg, ok := suspensionMessage(resp.body); ok {
			cl.log.Warn(ctx, "account suspended, clearing session")
			c.clearSession(ctx, cl.log)
			return nil, newSuspendedError(msg)
		}
	}

	token, err := c.refresher.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, newSessionExpiredError()
	}

	retried, err := c.send(ctx, cl, token)
	if err != nil {
		return nil, err
	}
	if isAuthFailure(retried.status) {
		cl.log.Warn(ctx, "request rejected after refresh, clearing session", "status", retried.status)
		c.clearSession(ctx, cl.log)
		return nil, newSessionExpiredError()
	}
	return retried, nil
}

func (c *HTTPClient) clearSession(ctx context.Context, log logging.Logger) {
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error(ctx, "failed to clear session", "error", err)
	}
}

// prepare validates the request once; attempts clone the template.
func (c *HTTPClient) prepare(ctx context.Context, endpoint string, req Request) (*call, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolve(endpoint, req.Query)
	if err != nil {
		return nil, err
	}

	payload, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	tmpl, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			tmpl.Header.Add(k, v)
		}
	}
	if contentType != "" && tmpl.Header.Get("Content-Type") == "" {
		tmpl.Header.Set("Content-Type", contentType)
	}
	if tmpl.Header.Get("Accept") == "" {
		tmpl.Header.Set("Accept", "application/json")
	}

	requestID := c.newRequestID()
	tmpl.Header.Set(common.RequestIDHeaderName, requestID)

	return &call{
		template:  tmpl,
		payload:   payload,
		requestID: requestID,
		log:       c.log.With("request_id", requestID, "method", method, "endpoint", endpoint),
	}, nil
}

func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		if b == nil {
			return nil, "", nil
		}
		return b.data, b.contentType, nil
	case RawBody:
		return b.Data, b.ContentType, nil
	case *RawBody:
		if b == nil {
			return nil, "", nil
		}
		return b.Data, b.ContentType, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, "application/json", nil
	}
}

func decodeResponse(resp *response, out any) error {
	if resp.status < 200 || resp.status >= 300 {
		return newServerError(resp.status, resp.body)
	}
	if out == nil {
		return nil
	}

	if resp.status == http.StatusNoContent || len(bytes.TrimSpace(resp.body)) == 0 {
		return decodeEmpty(out)
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeEmpty stores {} into out. Targets that cannot hold an object keep
// their zero value.
func decodeEmpty(out any) error {
	err := json.Unmarshal(emptyObject, out)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}
