// Package gravatar probes the Gravatar service for an existing avatar image.
// It is the guide's example of code that performs a real network call: the
// service layer depends on the Checker interface and is tested with a mock,
// while the concrete client is tested against net/http/httptest.
package gravatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"testlab/internal/config"
)

// Checker reports whether a remote avatar exists for an email address.
type Checker interface {
	Has(ctx context.Context, email string) (bool, error)
}

// Client is an HTTP implementation of Checker against the Gravatar API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Checker = (*Client)(nil)

// NewClient builds a Client from config. The HTTP transport is wrapped with
// otelhttp so outbound probes show up in traces.
func NewClient(cfg config.GravatarConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// EmailHash returns the Gravatar hash for an email address:
// md5 hex of the lowercased, trimmed address.
func EmailHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// ImageURL returns the public Gravatar image URL for a hash. Unlike Has it
// needs no client: the URL is served by Gravatar's public CDN.
func ImageURL(hash string) string {
	return "https://www.gravatar.com/avatar/" + hash
}

// Has issues a GET for the avatar with d=404, so a missing avatar yields 404
// instead of a generated placeholder image.
func (c *Client) Has(ctx context.Context, email string) (bool, error) {
	u := fmt.Sprintf("%s/avatar/%s?d=404", c.baseURL, EmailHash(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build gravatar request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("gravatar request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("gravatar: unexpected status %d", resp.StatusCode)
	}
}
