package report

import (
	"bytes"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/insightflow/leadscout/internal/model"
)

var xlsxHeaders = []string{
	"优先级", "公司名", "官网", "行业", "规模", "BANT总分",
	"Budget", "Authority", "Need", "Timing",
	"联系人姓名", "联系人职位", "邮箱", "电话", "建议触达方式", "触达话术",
}

// RenderFullXLSX renders the full-mode leads as a single-sheet
// workbook, one row per lead with the primary contact inlined.
func RenderFullXLSX(leads []model.EnrichedLead) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("leads")
	if err != nil {
		return nil, eris.Wrap(err, "report: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeaders {
		header.AddCell().SetString(h)
	}

	for _, lead := range leads {
		var primary model.ContactPerson
		if len(lead.Contacts) > 0 {
			primary = lead.Contacts[0]
		}

		row := sheet.AddRow()
		row.AddCell().SetString(string(lead.Priority))
		row.AddCell().SetString(lead.CompanyName)
		row.AddCell().SetString(lead.Website)
		row.AddCell().SetString(lead.Industry)
		row.AddCell().SetString(lead.EstimatedSize)
		row.AddCell().SetInt(lead.BANT.TotalScore())
		row.AddCell().SetInt(lead.BANT.Budget.Score)
		row.AddCell().SetInt(lead.BANT.Authority.Score)
		row.AddCell().SetInt(lead.BANT.Need.Score)
		row.AddCell().SetInt(lead.BANT.Timing.Score)
		row.AddCell().SetString(primary.Name)
		row.AddCell().SetString(primary.Title)
		row.AddCell().SetString(primary.Email)
		row.AddCell().SetString(primary.Phone)
		row.AddCell().SetString(lead.RecommendedApproach)
		row.AddCell().SetString(strings.Join(lead.TalkingPoints, "; "))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "report: write xlsx")
	}
	return buf.Bytes(), nil
}
