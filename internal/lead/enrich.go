package lead

import (
	"encoding/json"

	"github.com/insightflow/leadscout/internal/model"
)

// Enrichment is one enrichment reply keyed by the lead it belongs to.
type Enrichment struct {
	Contacts       []model.ContactPerson
	CompanyContact model.CompanyContact
}

// DecodeEnrichment validates an enrichment reply's parsed mapping.
// Malformed contact entries are dropped individually.
func DecodeEnrichment(data map[string]any) Enrichment {
	var e Enrichment
	if rawList, ok := data["contacts"].([]any); ok {
		for _, raw := range rawList {
			obj, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			buf, err := json.Marshal(obj)
			if err != nil {
				continue
			}
			var c model.ContactPerson
			if err := json.Unmarshal(buf, &c); err != nil {
				continue
			}
			e.Contacts = append(e.Contacts, c)
		}
	}
	if obj, ok := data["company_contact"].(map[string]any); ok {
		if buf, err := json.Marshal(obj); err == nil {
			_ = json.Unmarshal(buf, &e.CompanyContact)
		}
	}
	return e
}

// BuildEnriched joins qualified leads with enrichment results by dedup
// key. Leads without an enrichment entry still come through, with
// empty contact data.
func BuildEnriched(qualified []model.QualifiedLead, enrichments map[string]Enrichment) []model.EnrichedLead {
	enriched := make([]model.EnrichedLead, 0, len(qualified))
	for _, ql := range qualified {
		e := enrichments[model.DedupKey(ql.CompanyName)]
		enriched = append(enriched, model.EnrichedLead{
			QualifiedLead:  ql,
			Contacts:       e.Contacts,
			CompanyContact: e.CompanyContact,
		})
	}
	return enriched
}
