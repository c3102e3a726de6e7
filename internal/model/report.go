package model

import "time"

// RunMode selects the pipeline variant. Broad maximizes candidate volume
// and skips qualification and enrichment; full runs the whole chain.
type RunMode string

const (
	ModeBroad RunMode = "broad"
	ModeFull  RunMode = "full"
)

// SalesLeadReport is the run result object: the sole handoff to any
// presentation layer. Built once at the end of a run, never mutated.
type SalesLeadReport struct {
	ProductName    string          `json:"product_name"`
	ProductProfile *ProductProfile `json:"product_profile,omitempty"`
	ICP            *ICP            `json:"icp,omitempty"`

	Leads      []EnrichedLead `json:"leads,omitempty"`
	BroadLeads []RawLead      `json:"broad_leads,omitempty"`

	TotalLeads int `json:"total_leads"`
	HotLeads   int `json:"hot_leads"`
	WarmLeads  int `json:"warm_leads"`
	ColdLeads  int `json:"cold_leads"`

	ReportFilepath string `json:"report_filepath,omitempty"`
	CSVFilepath    string `json:"csv_filepath,omitempty"`
	XLSXFilepath   string `json:"xlsx_filepath,omitempty"`

	GeneratedAt          time.Time        `json:"generated_at"`
	SearchStrategiesUsed []SearchStrategy `json:"search_strategies_used,omitempty"`
	TotalSearchQueries   int              `json:"total_search_queries"`
	ExecutionTimeSeconds float64          `json:"execution_time_seconds"`
}
