package forward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single forward when none is configured.
const DefaultTimeout = 60 * time.Second

// maxResponseBody caps how much of the destination's reply is read.
const maxResponseBody = 64 << 10

// ForwardError reports a forward that did not produce a response from the destination.
type ForwardError struct {
	URL string
	Err error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("could not forward the alert group: %v", e.Err)
}

func (e *ForwardError) Unwrap() error { return e.Err }

// Timeout reports whether the forward gave up because the deadline passed.
func (e *ForwardError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Result is what the destination answered.
type Result struct {
	StatusCode int
	Body       []byte
}

type Forwarder struct {
	url    string
	client *http.Client
}

// NewForwarder returns a Forwarder that posts to url and gives up after timeout.
func NewForwarder(url string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the destination.
func (f *Forwarder) URL() string { return f.url }

// Forward makes exactly one POST of body to the destination with a copy of header.
// Any status code is a successful exchange; only transport failures and an unreadable
// reply return a *ForwardError.
func (f *Forwarder) Forward(ctx context.Context, header http.Header, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, &ForwardError{URL: f.url, Err: err}
	}
	// Content-Length and Host are derived from the new body and URL by the client.
	req.Header = header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ForwardError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &ForwardError{URL: f.url, Err: fmt.Errorf("read response body: %w", err)}
	}

	log.WithFields(log.Fields{"code": resp.StatusCode, "body": string(respBody)}).Debug("Forwarder - Received response from destination")

	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}
