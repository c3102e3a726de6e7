// Package expand tops up a thin broad-mode lead list by running the
// planned queries directly against the search provider, skipping the
// agent entirely.
package expand

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/model"
	"github.com/insightflow/leadscout/internal/search"
)

// ProvenanceNote marks leads sourced by programmatic expansion rather
// than agent discovery.
const ProvenanceNote = "programmatic search expansion"

// boilerplateWords are title fragments that never belong to a company
// name. Comparison is case-insensitive on whole segments.
var boilerplateWords = []string{
	"official website", "official site", "homepage", "home page", "home",
	"welcome", "about us", "about", "contact us", "contact", "login",
	"官网", "官方网站", "首页", "主页", "欢迎", "关于我们", "联系我们", "招聘信息",
}

// titleSeparators split a page title into segments; the first usable
// segment is taken as the company name.
var titleSeparators = []string{"|", "—", "–", "_", "·", "»", "::", " - ", "：", "，"}

// Expander issues planned queries against the search provider to reach
// a minimum lead count.
type Expander struct {
	provider   search.Provider
	maxQueries int
	perQuery   int
}

// New builds an expander. maxQueries caps how many planned queries may
// be spent; perQuery is the result count requested per query.
func New(provider search.Provider, maxQueries, perQuery int) *Expander {
	if maxQueries <= 0 {
		maxQueries = 20
	}
	if perQuery <= 0 {
		perQuery = 10
	}
	return &Expander{provider: provider, maxQueries: maxQueries, perQuery: perQuery}
}

type plannedQuery struct {
	text   string
	locale string
}

// TopUp returns additional leads derived from raw search hits until
// existing+new reaches target, the query budget runs out, or maxLeads
// is hit. Dedup against existing leads and among hits is enforced on
// both the derived company name and the hit's domain, independently.
func (e *Expander) TopUp(ctx context.Context, plan *model.SearchPlan, existing []model.RawLead, target, maxLeads int) []model.RawLead {
	seenNames := make(map[string]struct{}, len(existing))
	seenDomains := make(map[string]struct{}, len(existing))
	for _, lead := range existing {
		seenNames[model.DedupKey(lead.CompanyName)] = struct{}{}
		if d := domainOf(lead.Website); d != "" {
			seenDomains[d] = struct{}{}
		}
		if d := domainOf(lead.SourceURL); d != "" {
			seenDomains[d] = struct{}{}
		}
	}

	queries := planQueries(plan, e.maxQueries)
	zap.L().Info("expand: topping up leads",
		zap.Int("existing", len(existing)),
		zap.Int("target", target),
		zap.Int("queries", len(queries)),
	)

	total := len(existing)
	var added []model.RawLead
	for _, q := range queries {
		if total >= target || (maxLeads > 0 && total >= maxLeads) {
			break
		}

		results, err := e.provider.Query(ctx, q.text, e.perQuery, q.locale)
		if err != nil {
			zap.L().Warn("expand: query failed", zap.String("query", q.text), zap.Error(err))
			continue
		}

		for _, hit := range results {
			if total >= target || (maxLeads > 0 && total >= maxLeads) {
				break
			}
			lead, ok := leadFromHit(hit, seenNames, seenDomains)
			if !ok {
				continue
			}
			added = append(added, lead)
			total++
		}
	}

	zap.L().Info("expand: top-up complete", zap.Int("added", len(added)))
	return added
}

// planQueries collects the union of both locales' queries across all
// planned tasks, deduplicated in order, capped at max.
func planQueries(plan *model.SearchPlan, max int) []plannedQuery {
	if plan == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var queries []plannedQuery
	add := func(text, locale string) {
		text = strings.TrimSpace(text)
		if text == "" || len(queries) >= max {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		queries = append(queries, plannedQuery{text: text, locale: locale})
	}
	for _, task := range plan.SearchTasks {
		add(task.QueryZH, "zh-CN")
		add(task.QueryEN, "en-US")
	}
	return queries
}

func leadFromHit(hit search.Result, seenNames, seenDomains map[string]struct{}) (model.RawLead, bool) {
	domain := domainOf(hit.URL)
	if domain != "" {
		if _, dup := seenDomains[domain]; dup {
			return model.RawLead{}, false
		}
	}

	name := CompanyNameFromTitle(hit.Title)
	if name == "" {
		name = domainPrefix(domain)
	}
	if name == "" {
		return model.RawLead{}, false
	}
	key := model.DedupKey(name)
	if _, dup := seenNames[key]; dup {
		return model.RawLead{}, false
	}

	seenNames[key] = struct{}{}
	if domain != "" {
		seenDomains[domain] = struct{}{}
	}
	return model.RawLead{
		CompanyName:   name,
		Website:       hit.URL,
		EstimatedSize: string(model.SizeUnknown),
		SourceURL:     hit.URL,
		Notes:         ProvenanceNote + ": " + hit.Snippet,
	}, true
}

// CompanyNameFromTitle derives a company name from a search-result
// title: the title is cut at the first separator and the leading
// segment survives unless it is pure boilerplate.
func CompanyNameFromTitle(title string) string {
	segment := strings.TrimSpace(title)
	for _, sep := range titleSeparators {
		if idx := strings.Index(segment, sep); idx >= 0 {
			segment = segment[:idx]
		}
	}
	segment = strings.Trim(segment, " \t-–—·:：,，")
	if segment == "" {
		return ""
	}
	lower := strings.ToLower(segment)
	for _, word := range boilerplateWords {
		if lower == word {
			return ""
		}
	}
	return segment
}

func domainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// domainPrefix falls back to the first domain label as a name, e.g.
// "acme" from acme.example.com.
func domainPrefix(domain string) string {
	if domain == "" {
		return ""
	}
	return strings.SplitN(domain, ".", 2)[0]
}
