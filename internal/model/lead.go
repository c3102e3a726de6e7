package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// CompanySize is the canonical size vocabulary. Free-text labels that the
// synonym table cannot place are carried through as custom tiers.
type CompanySize string

const (
	SizeSmall   CompanySize = "small"
	SizeMedium  CompanySize = "medium"
	SizeLarge   CompanySize = "large"
	SizeUnknown CompanySize = "unknown"
)

// SizeMatch is the ICP size comparison verdict attached to a lead.
type SizeMatch string

const (
	SizeMatchYes     SizeMatch = "match"
	SizeMatchNo      SizeMatch = "mismatch"
	SizeMatchUnknown SizeMatch = "unknown"
)

// LeadPriority buckets a lead by BANT total score.
type LeadPriority string

const (
	PriorityHot  LeadPriority = "hot"
	PriorityWarm LeadPriority = "warm"
	PriorityCold LeadPriority = "cold"
)

// PriorityForScore maps a 0-100 total score to a priority tier. Every
// place that derives or re-derives priority goes through this function.
func PriorityForScore(score int) LeadPriority {
	switch {
	case score > 70:
		return PriorityHot
	case score >= 40:
		return PriorityWarm
	default:
		return PriorityCold
	}
}

var foldCaser = cases.Fold()

// DedupKey is the sole cross-stage identity for a lead: the trimmed,
// case-folded company name. Folding rather than ASCII lowercasing keeps
// mixed-script names (zh + latin) stable.
func DedupKey(companyName string) string {
	return foldCaser.String(strings.TrimSpace(companyName))
}

// RawLead is a candidate company as discovered by a scanning task.
type RawLead struct {
	CompanyName        string     `json:"company_name"`
	Website            string     `json:"website,omitempty"`
	Industry           string     `json:"industry,omitempty"`
	EstimatedSize      string     `json:"estimated_size,omitempty"`
	EmployeeCountRange string     `json:"employee_count_range,omitempty"`
	SizeEvidence       string     `json:"size_evidence,omitempty"`
	MatchSignals       StringList `json:"match_signals,omitempty"`
	SourceURL          string     `json:"source_url,omitempty"`
	Notes              string     `json:"notes,omitempty"`

	// Broad-mode annotations, filled after merge.
	SizeMatch     SizeMatch `json:"size_match,omitempty"`
	SizeJudgement string    `json:"size_judgement,omitempty"`
}

// ScanResult is one scanning reply after extraction.
type ScanResult struct {
	SearchStrategy   string     `json:"search_strategy,omitempty"`
	SearchQueriesUsed StringList `json:"search_queries_used,omitempty"`
	LeadsFound       []RawLead  `json:"leads_found,omitempty"`
	TotalFound       int        `json:"total_found,omitempty"`
}

// BANTDimension is a single scored BANT axis.
type BANTDimension struct {
	Score  int    `json:"score"`
	Reason string `json:"reason,omitempty"`
}

// BANTAssessment carries the four bounded sub-scores.
type BANTAssessment struct {
	Budget    BANTDimension `json:"budget"`
	Authority BANTDimension `json:"authority"`
	Need      BANTDimension `json:"need"`
	Timing    BANTDimension `json:"timing"`
}

// TotalScore sums the four sub-scores; with clamped dimensions this is
// always in [0, 100].
func (b BANTAssessment) TotalScore() int {
	return b.Budget.Score + b.Authority.Score + b.Need.Score + b.Timing.Score
}

// Priority derives the tier from the total score.
func (b BANTAssessment) Priority() LeadPriority {
	return PriorityForScore(b.TotalScore())
}

// QualifiedLead is a lead after BANT qualification.
type QualifiedLead struct {
	CompanyName        string         `json:"company_name"`
	Website            string         `json:"website,omitempty"`
	Industry           string         `json:"industry,omitempty"`
	EstimatedSize      string         `json:"estimated_size,omitempty"`
	EmployeeCountRange string         `json:"employee_count_range,omitempty"`
	SizeEvidence       string         `json:"size_evidence,omitempty"`
	TargetCompanySize  StringList     `json:"target_company_size,omitempty"`
	SizeMatch          SizeMatch      `json:"size_match,omitempty"`
	SizeJudgement      string         `json:"size_judgement,omitempty"`
	QualificationScore int            `json:"qualification_score"`
	Priority           LeadPriority   `json:"priority"`
	BANT               BANTAssessment `json:"bant_assessment"`
	ProductFit         string         `json:"product_fit,omitempty"`
	RecommendedApproach string        `json:"recommended_approach,omitempty"`
	TalkingPoints      StringList     `json:"talking_points,omitempty"`
}

// QualificationSummary is the qualifier's aggregate tally.
type QualificationSummary struct {
	TotalEvaluated int `json:"total_evaluated"`
	HotLeads       int `json:"hot_leads"`
	WarmLeads      int `json:"warm_leads"`
	ColdLeads      int `json:"cold_leads"`
}

// ContactPerson is one person found during enrichment.
type ContactPerson struct {
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Department  string `json:"department,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Source      string `json:"source,omitempty"`
	Confidence  string `json:"confidence,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// CompanyContact is company-level contact data.
type CompanyContact struct {
	GeneralEmail string `json:"general_email,omitempty"`
	GeneralPhone string `json:"general_phone,omitempty"`
	ContactPage  string `json:"contact_page,omitempty"`
	Address      string `json:"address,omitempty"`
}

// EnrichedLead is the terminal, exported record: a qualified lead plus
// whatever contact data enrichment found.
type EnrichedLead struct {
	QualifiedLead

	Contacts       []ContactPerson `json:"contacts,omitempty"`
	CompanyContact CompanyContact  `json:"company_contact"`
}
