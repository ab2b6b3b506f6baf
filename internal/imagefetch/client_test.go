package imagefetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_URL(t *testing.T) {
	c := NewClient(nil, "https://picsum.photos/", 800, 600)
	assert.Equal(t, "https://picsum.photos/800/600", c.URL())
}

func TestClient_Fetch(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(image)
	}))
	defer srv.Close()

	data, err := NewClient(srv.Client(), srv.URL, 800, 600).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(image, data))
	assert.Equal(t, "/800/600", gotPath)
}

func TestClient_FetchBadStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL, 800, 600).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, 1, calls, "no retries")
}

func TestClient_FetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL, 800, 600).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.False(t, errors.Is(err, ErrUpstream))
}

func TestClient_FetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil, url, 800, 600).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestNewHTTPClient_TLS(t *testing.T) {
	c := NewHTTPClient()
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Zero(t, c.Timeout)
	assert.NotNil(t, tr.TLSClientConfig)
}
