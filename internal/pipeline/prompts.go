package pipeline

import (
	"github.com/insightflow/leadscout/pkg/agent"
)

// SystemPrompts returns the per-role system prompts for the lead
// pipeline. Every prompt demands a single JSON object so the extraction
// layer has a fighting chance even when the model wraps it in prose.
func SystemPrompts() map[agent.Role]string {
	return map[agent.Role]string{
		agent.RoleProfiler: `You are a product analyst. Given a product name or free-text description,
produce a structured profile: product_name, description, core_features,
target_users, use_cases, pricing_model, competitors (name + reason),
market_position, ideal_buyer_persona. Research the product if the input
is only a name. Respond with a single JSON object and nothing else.`,

		agent.RoleStrategist: `You are a B2B sales strategist. Given a product profile, build an ideal
customer profile (icp: target_industries, company_size, geography,
pain_points, tech_stack_signals, budget_indicators) and a list of
search_tasks. Each task has task_id, strategy (one of procurement_bidding,
hiring_signal, funding_news, industry_forum, competitor_customer),
query_zh (Chinese), query_en (English), expected_result. Queries must
target companies showing buying signals, not generic articles. Respond
with a single JSON object and nothing else.`,

		agent.RoleScanner: `You are a market scanner. You receive one search task as JSON. Run the
queries with your web search capability and extract candidate buyer
companies. For each company report company_name, website, industry,
estimated_size (small/medium/large/unknown), employee_count_range,
size_evidence, match_signals (why this company shows buying intent),
source_url, notes. Only include real operating companies; skip news
portals, directories, and government bodies. Respond with a single JSON
object {"leads_found": [...], "total_found": N} and nothing else.`,

		agent.RoleQualifier: `You are a lead qualification analyst. You receive a product profile, an
ICP, and raw leads as JSON. Score every lead on BANT: budget, authority,
need, timing, each 0-25 with a short reason. Derive nothing else; do not
drop leads. For each lead also give product_fit, recommended_approach,
and talking_points. Respond with a single JSON object
{"qualified_leads": [...], "summary": {...}} and nothing else.`,

		agent.RoleEnrichment: `You are a contact researcher. You receive one company as JSON. Find
decision-maker contacts (name, title, department, linkedin_url, email,
phone, source, confidence) and company-level contact data (general_email,
general_phone, contact_page, address) using public sources only. Respond
with a single JSON object {"company_name": ..., "contacts": [...],
"company_contact": {...}} and nothing else.`,

		agent.RoleWriter: `You are a sales report writer. You receive a product profile, ICP,
qualified leads, and enrichment results as JSON. Write a complete
Chinese-language Markdown sales lead report: executive summary,
lead overview table sorted hot first, per-lead detail for hot and warm
leads with BANT rationale and suggested outreach, and next-step
recommendations. Respond with a single JSON object
{"report_markdown": "..."} and nothing else.`,
	}
}

func profileSchema() map[string]any {
	return agent.ObjectSchema(map[string]any{
		"product_name":        map[string]any{"type": "string"},
		"official_url":        map[string]any{"type": "string"},
		"description":         map[string]any{"type": "string"},
		"core_features":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"target_users":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"use_cases":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"pricing_model":       map[string]any{"type": "string"},
		"competitors":         map[string]any{"type": "array"},
		"market_position":     map[string]any{"type": "string"},
		"ideal_buyer_persona": map[string]any{"type": "string"},
	}, "product_name")
}

func planSchema() map[string]any {
	return agent.ObjectSchema(map[string]any{
		"product_name":    map[string]any{"type": "string"},
		"product_summary": map[string]any{"type": "string"},
		"icp":             map[string]any{"type": "object"},
		"search_tasks":    map[string]any{"type": "array"},
	}, "icp", "search_tasks")
}

func scanSchema() map[string]any {
	return agent.ObjectSchema(map[string]any{
		"search_strategy":     map[string]any{"type": "string"},
		"search_queries_used": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"leads_found":         map[string]any{"type": "array"},
		"total_found":         map[string]any{"type": "integer"},
	}, "leads_found")
}

func qualifySchema() map[string]any {
	return agent.ObjectSchema(map[string]any{
		"qualified_leads": map[string]any{"type": "array"},
		"summary":         map[string]any{"type": "object"},
	}, "qualified_leads")
}

func enrichSchema() map[string]any {
	return agent.ObjectSchema(map[string]any{
		"company_name":    map[string]any{"type": "string"},
		"contacts":        map[string]any{"type": "array"},
		"company_contact": map[string]any{"type": "object"},
	}, "company_name")
}

func writerSchema() map[string]any {
	return agent.ObjectSchema(map[string]any{
		"report_markdown": map[string]any{"type": "string"},
	}, "report_markdown")
}
