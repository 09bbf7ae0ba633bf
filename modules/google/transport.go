package google

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"
)

// retryTransport bounds every round trip by its own timeout and retries once
// after a backoff when the round trip itself failed, a timed-out first
// attempt included. Responses, whatever their status, are returned as is.
type retryTransport struct {
	base    http.RoundTripper
	timeout time.Duration
	backoff time.Duration
}

// NewHTTPClient returns the client used for every provider call. timeout
// bounds a single attempt; the client allows for two attempts and the backoff.
func NewHTTPClient(timeout, backoff time.Duration) *http.Client {
	client := &http.Client{
		Transport: &retryTransport{
			base:    http.DefaultTransport,
			timeout: timeout,
			backoff: backoff,
		},
	}
	if timeout > 0 {
		client.Timeout = 2*timeout + backoff
	}
	return client
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.attempt(req)
	if err == nil || !replayable(req) {
		return resp, err
	}

	log.Printf("[google] %s %s failed, retrying in %v: %v", req.Method, req.URL.Path, t.backoff, err)

	timer := time.NewTimer(t.backoff)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case <-timer.C:
	}

	retry := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, err
		}
		retry.Body = body
	}
	return t.attempt(retry)
}

// attempt sends req once under the per-attempt timeout. The timeout stays
// armed until the response body is closed.
func (t *retryTransport) attempt(req *http.Request) (*http.Response, error) {
	if t.timeout <= 0 {
		return t.base.RoundTrip(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.timeout)
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// replayable reports whether req can be sent a second time.
func replayable(req *http.Request) bool {
	if req.Context().Err() != nil {
		return false
	}
	if req.Body == nil || req.Body == http.NoBody {
		return true
	}
	return req.GetBody != nil
}
