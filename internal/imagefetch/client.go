package imagefetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUpstream wraps transport failures and non-2xx responses.
	ErrUpstream = errors.New("image service request failed")
	// ErrEmptyImage is returned when the service answers 2xx with no body.
	ErrEmptyImage = errors.New("image service returned no data")
)

// Client fetches an arbitrary stock image from the configured service.
// The returned image is unrelated to any prompt.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient builds a client for baseURL/width/height.
func NewClient(httpClient *http.Client, baseURL string, width, height int) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		url:        fmt.Sprintf("%s/%d/%d", strings.TrimRight(baseURL, "/"), width, height),
	}
}

// NewHTTPClient returns an HTTP client restricted to modern TLS. It sets
// no timeout.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			},
		},
	}
	return &http.Client{Transport: tr}
}

// URL is the endpoint every Fetch requests.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues a single GET and returns the raw image bytes. Nothing is
// retried.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstream, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	return data, nil
}

// StatusError reports a non-2xx answer from the image service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}
