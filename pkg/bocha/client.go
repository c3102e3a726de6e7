// Package bocha provides a client for the Bocha web search API
// (api.bocha.cn), the preferred backend for Chinese-language queries.
package bocha

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/insightflow/leadscout/internal/resilience"
)

const (
	defaultBaseURL = "https://api.bocha.cn"
	maxCount       = 50
	defaultCount   = 8
)

// Client performs web searches against the Bocha API.
type Client interface {
	WebSearch(ctx context.Context, req WebSearchRequest) (*WebSearchResponse, error)
}

// WebSearchRequest is the request body for POST /v1/web-search.
type WebSearchRequest struct {
	Query     string `json:"query"`
	Count     int    `json:"count,omitempty"`
	Summary   bool   `json:"summary,omitempty"`
	Freshness string `json:"freshness,omitempty"`
}

// WebSearchResponse is the envelope returned by the API. Some deploys
// nest the page list under data, some return it at the top level.
type WebSearchResponse struct {
	Code     int       `json:"code"`
	Data     *PageData `json:"data,omitempty"`
	WebPages *WebPages `json:"webPages,omitempty"`
}

// PageData is the nested payload variant.
type PageData struct {
	WebPages *WebPages `json:"webPages,omitempty"`
}

// WebPages holds the result list.
type WebPages struct {
	Value []WebPage `json:"value"`
}

// WebPage is one search hit.
type WebPage struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	Summary       string `json:"summary"`
	SiteName      string `json:"siteName"`
	DatePublished string `json:"datePublished"`
}

// Pages resolves the envelope variants to the result list.
func (r *WebSearchResponse) Pages() []WebPage {
	if r.Data != nil && r.Data.WebPages != nil {
		return r.Data.WebPages.Value
	}
	if r.WebPages != nil {
		return r.WebPages.Value
	}
	return nil
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetryConfig overrides the retry policy (shorter backoff in tests).
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Bocha API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) WebSearch(ctx context.Context, req WebSearchRequest) (*WebSearchResponse, error) {
	if req.Count <= 0 {
		req.Count = defaultCount
	}
	if req.Count > maxCount {
		req.Count = maxCount
	}
	if req.Freshness == "" {
		req.Freshness = "noLimit"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "bocha: marshal request")
	}

	retryCfg := c.retry
	retryCfg.OnRetry = resilience.RetryLogger("bocha", "web-search")

	respBody, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]byte, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/web-search", bytes.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "bocha: create request")
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, eris.Wrap(err, "bocha: send request")
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "bocha: read response")
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("bocha: status %d: %s", resp.StatusCode, string(respBody)),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("bocha: unexpected status %d: %s", resp.StatusCode, string(respBody))
		}
		return respBody, nil
	})
	if err != nil {
		return nil, err
	}

	var result WebSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "bocha: unmarshal response")
	}

	return &result, nil
}
