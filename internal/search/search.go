// Package search abstracts the web-search capability behind a single
// Provider interface, selecting between the Bocha and Jina backends
// and rate limiting outbound queries.
package search

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/insightflow/leadscout/internal/resilience"
	"github.com/insightflow/leadscout/pkg/bocha"
	"github.com/insightflow/leadscout/pkg/jina"
)

// Result is one normalized search hit, independent of backend.
type Result struct {
	Title    string
	URL      string
	Snippet  string
	SiteName string
}

// Provider issues web searches. Close releases backend resources and
// must be called when the pipeline finishes, success or not.
type Provider interface {
	Query(ctx context.Context, text string, max int, locale string) ([]Result, error)
	Close() error
}

// Fetcher is the optional page-fetch capability. Backends that can pull
// a URL as markdown implement it; callers type-assert and carry on
// without it when absent.
type Fetcher interface {
	Fetch(ctx context.Context, url string, maxRunes int) (string, error)
}

// Config selects and parameterizes the search backend.
type Config struct {
	// Backend is "bocha" or "jina".
	Backend     string
	BochaAPIKey string
	JinaAPIKey  string
	// Base URLs override each client's default endpoint when non-empty.
	BochaBaseURL      string
	JinaBaseURL       string
	JinaSearchBaseURL string
	// QPS caps outbound query rate; zero means 1 query/second.
	QPS float64
}

// NewProvider builds the configured backend. A bocha selection without
// an API key falls back to jina with a warning rather than failing.
func NewProvider(cfg Config) (Provider, error) {
	limiter := newLimiter(cfg.QPS)
	breaker := newBreaker()

	switch cfg.Backend {
	case "bocha":
		if cfg.BochaAPIKey == "" {
			zap.L().Warn("search: bocha selected but no API key set, falling back to jina")
			break
		}
		var opts []bocha.Option
		if cfg.BochaBaseURL != "" {
			opts = append(opts, bocha.WithBaseURL(cfg.BochaBaseURL))
		}
		return &bochaProvider{
			client:  bocha.NewClient(cfg.BochaAPIKey, opts...),
			limiter: limiter,
			breaker: breaker,
		}, nil
	case "jina", "":
	default:
		return nil, eris.Errorf("search: unknown backend %q", cfg.Backend)
	}

	if cfg.JinaAPIKey == "" {
		return nil, eris.New("search: jina backend requires an API key")
	}
	var opts []jina.Option
	if cfg.JinaBaseURL != "" {
		opts = append(opts, jina.WithBaseURL(cfg.JinaBaseURL))
	}
	if cfg.JinaSearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(cfg.JinaSearchBaseURL))
	}
	return &jinaProvider{
		client:  jina.NewClient(cfg.JinaAPIKey, opts...),
		limiter: limiter,
		breaker: breaker,
	}, nil
}

func newLimiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		qps = 1
	}
	return rate.NewLimiter(rate.Limit(qps), 1)
}

// newBreaker builds the shared circuit breaker for a backend. A run
// issues dozens of queries; once the backend starts failing hard the
// remaining ones fail fast instead of burning timeouts.
func newBreaker() *resilience.CircuitBreaker {
	cfg := resilience.DefaultCircuitBreakerConfig()
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("search: circuit breaker state change",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return resilience.NewCircuitBreaker(cfg)
}

type bochaProvider struct {
	client  bocha.Client
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

func (p *bochaProvider) Query(ctx context.Context, text string, max int, locale string) ([]Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "search: rate limit wait")
	}

	resp, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*bocha.WebSearchResponse, error) {
		return p.client.WebSearch(ctx, bocha.WebSearchRequest{
			Query:   text,
			Count:   max,
			Summary: true,
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: bocha query")
	}

	pages := resp.Pages()
	results := make([]Result, 0, len(pages))
	for _, page := range pages {
		snippet := page.Summary
		if snippet == "" {
			snippet = page.Snippet
		}
		results = append(results, Result{
			Title:    page.Name,
			URL:      page.URL,
			Snippet:  snippet,
			SiteName: page.SiteName,
		})
	}
	return results, nil
}

func (p *bochaProvider) Close() error { return nil }

type jinaProvider struct {
	client  jina.Client
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

func (p *jinaProvider) Query(ctx context.Context, text string, max int, locale string) ([]Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "search: rate limit wait")
	}

	opts := []jina.SearchOption{}
	if max > 0 {
		opts = append(opts, jina.WithCount(max))
	}
	if locale != "" {
		opts = append(opts, jina.WithLocale(locale))
	}

	resp, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*jina.SearchResponse, error) {
		return p.client.Search(ctx, text, opts...)
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: jina query")
	}

	results := make([]Result, 0, len(resp.Data))
	for _, hit := range resp.Data {
		results = append(results, Result{
			Title:   hit.Title,
			URL:     hit.URL,
			Snippet: hit.Description,
		})
		if max > 0 && len(results) == max {
			break
		}
	}
	return results, nil
}

func (p *jinaProvider) Close() error { return nil }

// Fetch pulls a URL as markdown via the Jina reader, truncated to
// maxRunes. Zero or negative maxRunes means no cap.
func (p *jinaProvider) Fetch(ctx context.Context, url string, maxRunes int) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "search: rate limit wait")
	}

	resp, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*jina.ReadResponse, error) {
		return p.client.Read(ctx, url)
	})
	if err != nil {
		return "", eris.Wrap(err, "search: jina read")
	}

	content := resp.Data.Content
	if maxRunes > 0 {
		if runes := []rune(content); len(runes) > maxRunes {
			content = string(runes[:maxRunes])
		}
	}
	return content, nil
}
