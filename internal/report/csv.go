package report

import (
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/insightflow/leadscout/internal/model"
)

// utf8BOM keeps the Chinese column headers readable when the CSV is
// opened directly in spreadsheet software.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type broadRow struct {
	CompanyName   string `csv:"公司名"`
	Website       string `csv:"官网"`
	Industry      string `csv:"行业"`
	EstimatedSize string `csv:"规模"`
	SizeMatch     string `csv:"规模匹配"`
	SizeJudgement string `csv:"规模匹配说明"`
	Reason        string `csv:"匹配原因"`
	SourceURL     string `csv:"来源"`
	Notes         string `csv:"备注"`
}

// RenderBroadCSV renders the broad-mode tabular export, one row per
// lead, with a UTF-8 BOM prefix.
func RenderBroadCSV(leads []model.RawLead) ([]byte, error) {
	rows := make([]broadRow, 0, len(leads))
	for _, lead := range leads {
		rows = append(rows, broadRow{
			CompanyName:   lead.CompanyName,
			Website:       lead.Website,
			Industry:      lead.Industry,
			EstimatedSize: lead.EstimatedSize,
			SizeMatch:     string(lead.SizeMatch),
			SizeJudgement: lead.SizeJudgement,
			Reason:        leadReason(lead),
			SourceURL:     lead.SourceURL,
			Notes:         lead.Notes,
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal broad csv")
	}
	return append(utf8BOM, data...), nil
}

type fullRow struct {
	Priority       string `csv:"优先级"`
	CompanyName    string `csv:"公司名"`
	Website        string `csv:"官网"`
	Industry       string `csv:"行业"`
	EstimatedSize  string `csv:"规模"`
	TotalScore     int    `csv:"BANT总分"`
	BudgetScore    int    `csv:"Budget"`
	AuthorityScore int    `csv:"Authority"`
	NeedScore      int    `csv:"Need"`
	TimingScore    int    `csv:"Timing"`
	ContactName    string `csv:"联系人姓名"`
	ContactTitle   string `csv:"联系人职位"`
	ContactEmail   string `csv:"邮箱"`
	ContactPhone   string `csv:"电话"`
	GeneralEmail   string `csv:"公司邮箱"`
	GeneralPhone   string `csv:"公司电话"`
	Approach       string `csv:"建议触达方式"`
	TalkingPoints  string `csv:"触达话术"`
}

// RenderFullCSV renders the full-mode tabular export with BANT
// sub-scores and contact fan-out: one row per contact, or a single
// blank-contact row when enrichment found nobody.
func RenderFullCSV(leads []model.EnrichedLead) ([]byte, error) {
	var rows []fullRow
	for _, lead := range leads {
		base := fullRow{
			Priority:       string(lead.Priority),
			CompanyName:    lead.CompanyName,
			Website:        lead.Website,
			Industry:       lead.Industry,
			EstimatedSize:  lead.EstimatedSize,
			TotalScore:     lead.BANT.TotalScore(),
			BudgetScore:    lead.BANT.Budget.Score,
			AuthorityScore: lead.BANT.Authority.Score,
			NeedScore:      lead.BANT.Need.Score,
			TimingScore:    lead.BANT.Timing.Score,
			GeneralEmail:   lead.CompanyContact.GeneralEmail,
			GeneralPhone:   lead.CompanyContact.GeneralPhone,
			Approach:       lead.RecommendedApproach,
			TalkingPoints:  strings.Join(lead.TalkingPoints, "; "),
		}
		if len(lead.Contacts) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, contact := range lead.Contacts {
			row := base
			row.ContactName = contact.Name
			row.ContactTitle = contact.Title
			row.ContactEmail = contact.Email
			row.ContactPhone = contact.Phone
			rows = append(rows, row)
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal full csv")
	}
	return append(utf8BOM, data...), nil
}

// leadReason picks the display reason for a broad-mode lead: the first
// non-empty match signal, else the notes, else a generic sentence.
func leadReason(lead model.RawLead) string {
	for _, signal := range lead.MatchSignals {
		if strings.TrimSpace(signal) != "" {
			return signal
		}
	}
	if strings.TrimSpace(lead.Notes) != "" {
		return lead.Notes
	}
	return "matched planned search queries"
}
