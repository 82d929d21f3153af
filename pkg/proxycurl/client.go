// Package proxycurl provides a client for the Proxycurl person lookup API.
package proxycurl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nubela.co/proxycurl/api/v2"

// Client fetches professional profile records from the upstream provider.
type Client interface {
	FetchPerson(ctx context.Context, profileURL string) (*Person, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second against the provider.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Proxycurl API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FetchPerson(ctx context.Context, profileURL string) (*Person, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "proxycurl: rate limit wait")
	}

	q := url.Values{}
	q.Set("url", profileURL)
	q.Set("use_cache", "if-present")
	q.Set("fallback_to_cache", "on-error")
	q.Set("skills", "include")
	q.Set("personal_email", "include")
	q.Set("personal_contact_number", "include")
	q.Set("twitter_profile_id", "include")
	q.Set("facebook_profile_id", "include")
	q.Set("github_profile_id", "include")
	q.Set("certifications", "include")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/linkedin?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "proxycurl: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "proxycurl: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "proxycurl: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("proxycurl: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var p Person
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, eris.Wrap(err, "proxycurl: unmarshal response")
	}

	return &p, nil
}
