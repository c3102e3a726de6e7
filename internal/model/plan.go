package model

import "strings"

// SearchStrategy tags a search task with the tactic behind its queries.
// Modeled as a string so agent-invented strategies pass through unchanged.
type SearchStrategy string

const (
	StrategyCompetitorCustomer SearchStrategy = "competitor_customer"
	StrategyIndustryEvent      SearchStrategy = "industry_event"
	StrategyHiringSignal       SearchStrategy = "hiring_signal"
	StrategyFundingNews        SearchStrategy = "funding_news"
	StrategyDirectNeed         SearchStrategy = "direct_need"
	StrategyProcurement        SearchStrategy = "procurement_bidding"
	StrategyIndustryForum      SearchStrategy = "industry_forum"
)

// ICP is the ideal customer profile owned by the search plan.
type ICP struct {
	TargetIndustries StringList `json:"target_industries,omitempty"`
	CompanySize      StringList `json:"company_size,omitempty"`
	Geography        StringList `json:"geography,omitempty"`
	PainPoints       StringList `json:"pain_points,omitempty"`
	TechStackSignals StringList `json:"tech_stack_signals,omitempty"`
	BudgetIndicators StringList `json:"budget_indicators,omitempty"`
}

// SearchTask is one planned search, carrying queries in both locales.
type SearchTask struct {
	TaskID         string         `json:"task_id"`
	Strategy       SearchStrategy `json:"strategy,omitempty"`
	QueryZH        string         `json:"query_zh,omitempty"`
	QueryEN        string         `json:"query_en,omitempty"`
	ExpectedResult string         `json:"expected_result,omitempty"`
	Rationale      string         `json:"rationale,omitempty"`
}

// DedupKey identifies a task by its query pair; tasks with identical
// queries are the same work regardless of id or strategy.
func (t SearchTask) DedupKey() string {
	return strings.TrimSpace(t.QueryZH) + "\x00" + strings.TrimSpace(t.QueryEN)
}

// SearchPlan is the planning stage's full output: ICP plus search tasks.
type SearchPlan struct {
	ProductName              string       `json:"product_name,omitempty"`
	ProductSummary           string       `json:"product_summary,omitempty"`
	ValueProposition         string       `json:"value_proposition,omitempty"`
	ICP                      ICP          `json:"icp"`
	SearchTasks              []SearchTask `json:"search_tasks,omitempty"`
	CompetitorProducts       StringList   `json:"competitor_products,omitempty"`
	DisqualificationCriteria StringList   `json:"disqualification_criteria,omitempty"`
}
