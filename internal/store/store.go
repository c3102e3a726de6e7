// Package store persists runs and their per-stage records. Two
// implementations exist: sqlite for single-machine CLI use and
// postgres for the shared serve deployment.
package store

import (
	"context"

	"github.com/insightflow/leadscout/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Mode   model.RunMode   `json:"mode,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines run persistence for the lead-search pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, productInput string, mode model.RunMode, depth string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.SalesLeadReport) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Stages
	CreateStage(ctx context.Context, runID string, name string) (*model.RunStage, error)
	CompleteStage(ctx context.Context, stageID string, result *model.StageResult) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
