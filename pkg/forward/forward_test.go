package forward

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardCopiesHeadersAndBody(t *testing.T) {
	var gotHeader http.Header
	var gotBody []byte
	var gotLength int64
	destination := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		gotLength = r.ContentLength
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	}))
	defer destination.Close()

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Content-Length", "9999")
	header.Set("Key", "SECRET")

	f := NewForwarder(destination.URL, time.Second)
	res, err := f.Forward(context.Background(), header, []byte(`{"a":"b"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "queued", string(res.Body))
	assert.Equal(t, `{"a":"b"}`, string(gotBody))
	assert.Equal(t, int64(9), gotLength)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "SECRET", gotHeader.Get("Key"))
	assert.Equal(t, "9999", header.Get("Content-Length"), "caller's header must not be modified")
}

func TestForwardNonSuccessStatusIsNotAnError(t *testing.T) {
	destination := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer destination.Close()

	res, err := NewForwarder(destination.URL, time.Second).Forward(context.Background(), nil, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestForwardConnectionRefused(t *testing.T) {
	destination := httptest.NewServer(http.NotFoundHandler())
	url := destination.URL
	destination.Close()

	_, err := NewForwarder(url, time.Second).Forward(context.Background(), http.Header{}, []byte(`{}`))
	require.Error(t, err)

	var forwardErr *ForwardError
	require.True(t, errors.As(err, &forwardErr))
	assert.Equal(t, url, forwardErr.URL)
	assert.False(t, forwardErr.Timeout())
	assert.Contains(t, err.Error(), "could not forward the alert group")
}

func TestForwardTimeout(t *testing.T) {
	release := make(chan struct{})
	destination := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer destination.Close()
	defer close(release)

	_, err := NewForwarder(destination.URL, 50*time.Millisecond).Forward(context.Background(), http.Header{}, []byte(`{}`))
	require.Error(t, err)

	var forwardErr *ForwardError
	require.True(t, errors.As(err, &forwardErr))
	assert.True(t, forwardErr.Timeout())
}

func TestForwardInvalidURL(t *testing.T) {
	_, err := NewForwarder("://nope", time.Second).Forward(context.Background(), http.Header{}, []byte(`{}`))

	var forwardErr *ForwardError
	require.True(t, errors.As(err, &forwardErr))
}

func TestNewForwarderDefaultsTimeout(t *testing.T) {
	f := NewForwarder("http://localhost:6725", 0)
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
	assert.Equal(t, "http://localhost:6725", f.URL())
}
