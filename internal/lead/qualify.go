package lead

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/extract"
	"github.com/insightflow/leadscout/internal/model"
)

const maxDimensionScore = 25

// RepairNestedLeads surfaces a nested qualifier payload. Replies
// sometimes bury the lead list one level down under a payload key,
// possibly JSON-encoded; when the top level carries no qualified_leads
// the first nested object that does wins.
func RepairNestedLeads(data map[string]any) map[string]any {
	if _, ok := data["qualified_leads"]; ok {
		return data
	}
	for _, key := range []string{"content", "text", "result", "output"} {
		nested := data[key]
		if nested == nil {
			continue
		}
		if s, ok := nested.(string); ok {
			parsed, ok := extract.ExtractJSON(s)
			if !ok {
				continue
			}
			nested = parsed
		}
		if obj, ok := nested.(map[string]any); ok {
			if _, ok := obj["qualified_leads"]; ok {
				zap.L().Info("lead: recovered qualified_leads from nested payload",
					zap.String("key", key))
				return obj
			}
		}
	}
	return data
}

// BuildQualified constructs validated qualified leads from the
// qualifier's parsed reply. Each BANT sub-score is clamped into
// [0, 25] with missing dimensions scoring 0, and the total score and
// priority are re-derived from the clamped values rather than trusted
// from the reply. The summary is taken from the reply when present,
// otherwise recomputed by tallying priorities.
func BuildQualified(data map[string]any) ([]model.QualifiedLead, model.QualificationSummary) {
	data = RepairNestedLeads(data)

	var leads []model.QualifiedLead
	if rawList, ok := data["qualified_leads"].([]any); ok {
		for _, raw := range rawList {
			lead, ok := decodeQualifiedLead(raw)
			if !ok {
				continue
			}
			leads = append(leads, lead)
		}
	} else {
		zap.L().Warn("lead: qualifier reply carried no qualified_leads")
	}

	summary, ok := decodeSummary(data["summary"])
	if !ok {
		summary = tallySummary(leads)
	}
	return leads, summary
}

func decodeQualifiedLead(raw any) (model.QualifiedLead, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.QualifiedLead{}, false
	}
	buf, err := json.Marshal(obj)
	if err != nil {
		return model.QualifiedLead{}, false
	}
	var lead model.QualifiedLead
	if err := json.Unmarshal(buf, &lead); err != nil {
		return model.QualifiedLead{}, false
	}
	if lead.CompanyName == "" {
		return model.QualifiedLead{}, false
	}

	lead.BANT.Budget.Score = clampScore(lead.BANT.Budget.Score)
	lead.BANT.Authority.Score = clampScore(lead.BANT.Authority.Score)
	lead.BANT.Need.Score = clampScore(lead.BANT.Need.Score)
	lead.BANT.Timing.Score = clampScore(lead.BANT.Timing.Score)
	lead.QualificationScore = lead.BANT.TotalScore()
	lead.Priority = lead.BANT.Priority()
	if lead.EstimatedSize == "" {
		lead.EstimatedSize = string(model.SizeUnknown)
	}
	return lead, true
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxDimensionScore {
		return maxDimensionScore
	}
	return score
}

func decodeSummary(raw any) (model.QualificationSummary, bool) {
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) == 0 {
		return model.QualificationSummary{}, false
	}
	buf, err := json.Marshal(obj)
	if err != nil {
		return model.QualificationSummary{}, false
	}
	var summary model.QualificationSummary
	if err := json.Unmarshal(buf, &summary); err != nil {
		return model.QualificationSummary{}, false
	}
	return summary, true
}

func tallySummary(leads []model.QualifiedLead) model.QualificationSummary {
	summary := model.QualificationSummary{TotalEvaluated: len(leads)}
	for _, lead := range leads {
		switch lead.Priority {
		case model.PriorityHot:
			summary.HotLeads++
		case model.PriorityWarm:
			summary.WarmLeads++
		default:
			summary.ColdLeads++
		}
	}
	return summary
}

// FilterHotWarm keeps only the leads worth the cost of enrichment.
func FilterHotWarm(leads []model.QualifiedLead) []model.QualifiedLead {
	var kept []model.QualifiedLead
	for _, lead := range leads {
		if lead.Priority == model.PriorityHot || lead.Priority == model.PriorityWarm {
			kept = append(kept, lead)
		}
	}
	return kept
}
