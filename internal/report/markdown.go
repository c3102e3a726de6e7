package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/insightflow/leadscout/internal/model"
)

// previewRows caps the broad-mode markdown table.
const previewRows = 100

// RenderBroadMarkdown renders the broad-mode narrative: a header,
// summary counts, and a preview table of the first 100 leads.
func RenderBroadMarkdown(productName string, leads []model.RawLead, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 潜在客户广度扫描报告: %s\n\n", productName)
	fmt.Fprintf(&b, "生成时间: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "## 概览\n\n")
	fmt.Fprintf(&b, "- 候选公司总数: %d\n", len(leads))
	fmt.Fprintf(&b, "- 规模匹配: %d\n", countMatch(leads, model.SizeMatchYes))
	fmt.Fprintf(&b, "- 规模不匹配: %d\n", countMatch(leads, model.SizeMatchNo))
	fmt.Fprintf(&b, "- 规模未知: %d\n\n", countMatch(leads, model.SizeMatchUnknown))

	if len(leads) == 0 {
		b.WriteString("未发现候选公司。\n")
		return b.String()
	}

	b.WriteString("## 候选公司预览\n\n")
	if len(leads) > previewRows {
		fmt.Fprintf(&b, "前 %d 条，完整列表见 CSV。\n\n", previewRows)
	}
	b.WriteString("| 公司 | 行业 | 规模 | 匹配原因 | 来源 |\n")
	b.WriteString("|------|------|------|----------|------|\n")

	for i, lead := range leads {
		if i == previewRows {
			break
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(lead.CompanyName),
			cell(lead.Industry),
			cell(lead.EstimatedSize),
			cell(leadReason(lead)),
			cell(lead.SourceURL),
		)
	}
	return b.String()
}

func countMatch(leads []model.RawLead, verdict model.SizeMatch) int {
	n := 0
	for _, lead := range leads {
		if lead.SizeMatch == verdict {
			n++
		}
	}
	return n
}

// cell sanitizes a value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
