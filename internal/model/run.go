package model

import "time"

// RunStatus tracks where a run is in the state machine.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusProfiling  RunStatus = "profiling"
	RunStatusPlanning   RunStatus = "planning"
	RunStatusScanning   RunStatus = "scanning"
	RunStatusQualifying RunStatus = "qualifying"
	RunStatusEnriching  RunStatus = "enriching"
	RunStatusReporting  RunStatus = "reporting"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one lead-search execution as persisted by the store.
type Run struct {
	ID           string           `json:"id"`
	ProductInput string           `json:"product_input"`
	Mode         RunMode          `json:"mode"`
	Depth        string           `json:"depth"`
	Status       RunStatus        `json:"status"`
	Result       *SalesLeadReport `json:"result,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StageStatusRunning  StageStatus = "running"
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
	StageStatusSkipped  StageStatus = "skipped"
)

// StageResult records how one stage went; failures here never fail the run.
type StageResult struct {
	Name     string         `json:"name"`
	Status   StageStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RunStage is a stage row as persisted by the store.
type RunStage struct {
	ID        string      `json:"id"`
	RunID     string      `json:"run_id"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	StartedAt time.Time   `json:"started_at"`
}
