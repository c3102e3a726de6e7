// Package lead holds the reconciliation logic between agent stages:
// merging scan output, matching company size against the ICP, and
// building qualified records from unreliable scoring output.
package lead

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/extract"
	"github.com/insightflow/leadscout/internal/model"
	"github.com/insightflow/leadscout/pkg/agent"
)

// MergeScanReplies extracts each reply's lead list and merges them.
// A company is kept only the first time its dedup key appears; later
// duplicates are discarded whole, with no field-level merge. Replies
// that defeat extraction contribute zero leads.
func MergeScanReplies(replies []*agent.Reply) []model.RawLead {
	seen := make(map[string]struct{})
	var merged []model.RawLead

	for _, reply := range replies {
		data := extract.ParseReply(reply)
		rawList, ok := data["leads_found"].([]any)
		if !ok {
			zap.L().Debug("lead: scan reply carried no lead list")
			continue
		}
		for _, raw := range rawList {
			lead, ok := decodeRawLead(raw)
			if !ok {
				continue
			}
			key := model.DedupKey(lead.CompanyName)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, lead)
		}
	}

	zap.L().Info("lead: merged scan replies",
		zap.Int("replies", len(replies)),
		zap.Int("unique_leads", len(merged)),
	)
	return merged
}

func decodeRawLead(raw any) (model.RawLead, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.RawLead{}, false
	}
	buf, err := json.Marshal(obj)
	if err != nil {
		return model.RawLead{}, false
	}
	var lead model.RawLead
	if err := json.Unmarshal(buf, &lead); err != nil {
		return model.RawLead{}, false
	}
	return lead, true
}
