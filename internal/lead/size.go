package lead

import (
	"fmt"
	"strings"

	"github.com/insightflow/leadscout/internal/model"
)

// sizeSynonyms maps free-text size labels to canonical tiers. Lookup is
// on the trimmed, lowercased label.
var sizeSynonyms = map[string]model.CompanySize{
	"small":    model.SizeSmall,
	"startup":  model.SizeSmall,
	"start-up": model.SizeSmall,
	"sme":      model.SizeSmall,
	"smb":      model.SizeSmall,
	"初创":       model.SizeSmall,
	"初创企业":     model.SizeSmall,
	"小型":       model.SizeSmall,
	"小型企业":     model.SizeSmall,
	"中小企业":     model.SizeSmall,

	"medium":     model.SizeMedium,
	"mid-market": model.SizeMedium,
	"midmarket":  model.SizeMedium,
	"mid-size":   model.SizeMedium,
	"midsize":    model.SizeMedium,
	"中型":         model.SizeMedium,
	"中型企业":       model.SizeMedium,

	"large":      model.SizeLarge,
	"enterprise": model.SizeLarge,
	"大型":         model.SizeLarge,
	"大型企业":       model.SizeLarge,
	"集团":         model.SizeLarge,

	"unknown": model.SizeUnknown,
	"未知":      model.SizeUnknown,
	"n/a":     model.SizeUnknown,
}

// NormalizeSize resolves a free-text size label to a canonical tier.
// Unrecognized non-empty labels pass through unchanged so custom tiers
// supplied in the ICP keep working; only empty input becomes unknown.
func NormalizeSize(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return string(model.SizeUnknown)
	}
	if tier, ok := sizeSynonyms[strings.ToLower(trimmed)]; ok {
		return string(tier)
	}
	return trimmed
}

// MatchSize compares a lead's estimated size against the ICP's target
// tiers. The verdict is unknown when either side gives nothing to
// compare; otherwise membership in the normalized target set decides.
// The judgement string is informational and never used to filter leads.
func MatchSize(estimatedSize string, targetTiers []string) (model.SizeMatch, string) {
	size := NormalizeSize(estimatedSize)

	if len(targetTiers) == 0 {
		return model.SizeMatchUnknown, "ICP specifies no target company size"
	}
	if size == string(model.SizeUnknown) {
		return model.SizeMatchUnknown, fmt.Sprintf(
			"company size unknown, target %s", strings.Join(targetTiers, "/"))
	}

	normalized := make([]string, 0, len(targetTiers))
	for _, tier := range targetTiers {
		normalized = append(normalized, NormalizeSize(tier))
	}
	for _, tier := range normalized {
		if tier == size {
			return model.SizeMatchYes, fmt.Sprintf(
				"company size %s is within target %s", size, strings.Join(normalized, "/"))
		}
	}
	return model.SizeMatchNo, fmt.Sprintf(
		"company size %s is outside target %s", size, strings.Join(normalized, "/"))
}

// AnnotateSizes fills size-match verdicts on raw leads in place. Leads
// are annotated, never excluded, regardless of verdict.
func AnnotateSizes(leads []model.RawLead, targetTiers []string) {
	for i := range leads {
		leads[i].SizeMatch, leads[i].SizeJudgement = MatchSize(leads[i].EstimatedSize, targetTiers)
	}
}
