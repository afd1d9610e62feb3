// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
	}
}

// NewRetryingClient creates a client with bounded retry on transient failures.
func NewRetryingClient(timeout time.Duration, maxRetries int, backoff time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// DoWithRetry retries on network errors, 429 and 5xx with exponential backoff.
// The request must have a rewindable body (GetBody set) or no body.
func (c *Client) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	delay := c.backoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		attemptReq := req
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			attemptReq = req.Clone(ctx)
			attemptReq.Body = body
		} else {
			attemptReq = req.Clone(ctx)
		}

		resp, err = c.httpClient.Do(attemptReq)
		if err == nil && !isTransientStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt == c.maxRetries-1 {
			break
		}

		if resp != nil {
			resp.Body.Close()
			resp = nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
