// Package sbom is the client for the SBOM backend search and fetch endpoints.
package sbom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ortelius/scec-spog/model"
)

const (
	searchPath = "/api/v1/sbom/search"
	fetchPath  = "/api/v1/sbom"
)

var (
	// ErrInvalidURL is returned when a backend URL cannot be built from the base URL
	ErrInvalidURL = errors.New("invalid SBOM backend URL")
	// ErrDecode is returned when a search response body is not a search result
	ErrDecode = errors.New("failed to decode SBOM backend response")
)

// StatusError is returned when the backend answers a search with a non-success status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("SBOM backend returned status %d", e.StatusCode)
}

// Client talks to the SBOM backend. Requests are never retried.
type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
}

// NewClient creates a client for the backend at baseURL. The timeout bounds dialing
// and waiting for response headers but not reading the body, so fetched documents
// can stream for as long as they need.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, baseURL)
	}

	return &Client{
		BaseURL: base,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 90 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}, nil
}

func (c *Client) endpoint(path string, params url.Values) (string, error) {
	if c.BaseURL == nil {
		return "", fmt.Errorf("%w: no base URL configured", ErrInvalidURL)
	}
	u, err := c.BaseURL.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	target, err := c.endpoint(path, params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return httpClient.Do(req)
}

// Search queries the backend search endpoint, passing q, offset and limit verbatim
func (c *Client) Search(ctx context.Context, q string, offset, limit int) (*model.SBOMSearchResult, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, searchPath, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var result model.SBOMSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &result, nil
}

// Fetch requests a single SBOM by id. The caller owns the response body.
func (c *Client) Fetch(ctx context.Context, id string) (*http.Response, error) {
	params := url.Values{}
	params.Set("id", id)
	return c.get(ctx, fetchPath, params)
}
