// Package pipeline drives a lead-search run through its stages:
// profiling, planning, scanning, then either the broad finalization
// branch or qualification, enrichment, and reporting. Stage failures
// are contained; partial results always beat an aborted run.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/config"
	"github.com/insightflow/leadscout/internal/expand"
	"github.com/insightflow/leadscout/internal/extract"
	"github.com/insightflow/leadscout/internal/lead"
	"github.com/insightflow/leadscout/internal/model"
	"github.com/insightflow/leadscout/internal/plan"
	"github.com/insightflow/leadscout/internal/report"
	"github.com/insightflow/leadscout/internal/search"
	"github.com/insightflow/leadscout/internal/store"
	"github.com/insightflow/leadscout/pkg/agent"
)

const fallbackNarrative = "报告生成失败，未能提取到内容。"

// Pipeline orchestrates one lead-search run.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	invoker   agent.Invoker
	provider  search.Provider
	assembler *report.Assembler
	expander  *expand.Expander
}

// New creates a Pipeline with all dependencies. The provider is only
// exercised by the broad-mode expander; the caller owns its lifecycle.
func New(
	cfg *config.Config,
	st store.Store,
	invoker agent.Invoker,
	provider search.Provider,
	assembler *report.Assembler,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		invoker:   invoker,
		provider:  provider,
		assembler: assembler,
		expander:  expand.New(provider, 0, 0),
	}
}

// Run executes the pipeline for one product input and returns the
// assembled report. The only fatal errors are run-record creation and
// artifact writing; agent-stage failures degrade to partial results.
func (p *Pipeline) Run(ctx context.Context, productInput string, mode model.RunMode, depth string) (*model.SalesLeadReport, error) {
	log := zap.L().With(zap.String("mode", string(mode)), zap.String("depth", depth))
	log.Info("pipeline: starting run", zap.String("product", productInput))
	start := time.Now()
	preset := p.cfg.Pipeline.Preset(depth)

	run, err := p.store.CreateRun(ctx, productInput, mode, depth)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	trackStage := func(name string, fn func() (*model.StageResult, error)) *model.StageResult {
		stage, stageErr := p.store.CreateStage(ctx, run.ID, name)
		if stageErr != nil {
			log.Warn("pipeline: failed to create stage", zap.String("stage", name), zap.Error(stageErr))
		}

		stageStart := time.Now()
		result, fnErr := fn()
		duration := time.Since(stageStart).Milliseconds()

		if result == nil {
			result = &model.StageResult{}
		}
		result.Name = name
		result.Duration = duration

		if fnErr != nil {
			result.Status = model.StageStatusFailed
			result.Error = fnErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else if result.Status == "" {
			result.Status = model.StageStatusComplete
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if stage != nil {
			_ = p.store.CompleteStage(ctx, stage.ID, result)
		}
		return result
	}

	// ===== Profiling =====
	setStatus(model.RunStatusProfiling)
	var profile *model.ProductProfile
	var profileData map[string]any

	trackStage("profiling", func() (*model.StageResult, error) {
		reply, invokeErr := p.invoker.Invoke(ctx, agent.RoleProfiler, productInput, profileSchema())
		if invokeErr != nil {
			profile = &model.ProductProfile{ProductName: productInput}
			profileData = map[string]any{"product_name": productInput}
			return nil, invokeErr
		}
		profileData = extract.ParseReply(reply)
		profile = buildProfile(profileData, productInput)
		return &model.StageResult{
			Metadata: map[string]any{"product_name": profile.ProductName},
		}, nil
	})
	log.Info("pipeline: product profiled", zap.String("product", profile.ProductName))

	// ===== Planning =====
	setStatus(model.RunStatusPlanning)
	var searchPlan *model.SearchPlan

	trackStage("planning", func() (*model.StageResult, error) {
		msg := mustJSON(profileData)
		reply, invokeErr := p.invoker.Invoke(ctx, agent.RoleStrategist, msg, planSchema())
		if invokeErr != nil {
			searchPlan = plan.BuildPlan(map[string]any{}, profile, preset.SearchTasks)
			return nil, invokeErr
		}
		planData := extract.ParseReply(reply)
		searchPlan = plan.BuildPlan(planData, profile, preset.SearchTasks)
		return &model.StageResult{
			Metadata: map[string]any{
				"search_tasks":      len(searchPlan.SearchTasks),
				"target_industries": len(searchPlan.ICP.TargetIndustries),
			},
		}, nil
	})

	tasks := searchPlan.SearchTasks
	if len(tasks) > preset.SearchTasks {
		tasks = tasks[:preset.SearchTasks]
	}

	// ===== Scanning =====
	setStatus(model.RunStatusScanning)
	var leads []model.RawLead

	trackStage("scanning", func() (*model.StageResult, error) {
		replies := p.scanTasks(ctx, tasks)
		leads = lead.MergeScanReplies(replies)
		return &model.StageResult{
			Metadata: map[string]any{
				"tasks":        len(tasks),
				"merged_leads": len(leads),
			},
		}, nil
	})

	strategies := strategiesUsed(tasks)

	if len(leads) == 0 {
		log.Warn("pipeline: no leads found, ending run")
		result := &model.SalesLeadReport{
			ProductName:          profile.ProductName,
			ProductProfile:       profile,
			ICP:                  &searchPlan.ICP,
			GeneratedAt:          time.Now(),
			SearchStrategiesUsed: strategies,
			TotalSearchQueries:   len(tasks),
			ExecutionTimeSeconds: time.Since(start).Seconds(),
		}
		p.finalize(ctx, run.ID, result, log)
		return result, nil
	}

	if mode == model.ModeBroad {
		result := p.runBroad(ctx, trackStage, searchPlan, profile, leads, preset, strategies, len(tasks), start)
		p.finalize(ctx, run.ID, result, log)
		return result, nil
	}

	result := p.runFull(ctx, trackStage, setStatus, searchPlan, profile, profileData, leads, strategies, len(tasks), start)
	p.finalize(ctx, run.ID, result, log)
	return result, nil
}

// scanTasks runs scanning tasks sequentially: the scanner role keeps a
// conversational session, so its memory is reset before every task.
func (p *Pipeline) scanTasks(ctx context.Context, tasks []model.SearchTask) []*agent.Reply {
	log := zap.L()
	var replies []*agent.Reply
	for i, task := range tasks {
		msg := mustJSON(map[string]any{
			"task_id":         task.TaskID,
			"strategy":        string(task.Strategy),
			"query_zh":        task.QueryZH,
			"query_en":        task.QueryEN,
			"expected_result": task.ExpectedResult,
		})
		log.Info("pipeline: scanning",
			zap.Int("task", i+1),
			zap.Int("total", len(tasks)),
			zap.String("query", task.QueryZH),
		)

		p.invoker.Reset(agent.RoleScanner)
		reply, err := p.invoker.Invoke(ctx, agent.RoleScanner, msg, scanSchema())
		if err != nil {
			log.Warn("pipeline: scan task failed",
				zap.String("task_id", task.TaskID),
				zap.Error(err),
			)
			continue
		}
		replies = append(replies, reply)
	}
	return replies
}

// runBroad finalizes a broad-mode run: size annotation, programmatic
// top-up when the merge came in under the preset minimum, and the
// tabular artifacts. No scoring, enrichment, or narrative.
func (p *Pipeline) runBroad(
	ctx context.Context,
	trackStage func(string, func() (*model.StageResult, error)) *model.StageResult,
	searchPlan *model.SearchPlan,
	profile *model.ProductProfile,
	leads []model.RawLead,
	preset config.DepthPreset,
	strategies []model.SearchStrategy,
	taskCount int,
	start time.Time,
) *model.SalesLeadReport {
	trackStage("broad_finalize", func() (*model.StageResult, error) {
		lead.AnnotateSizes(leads, searchPlan.ICP.CompanySize)

		expanded := 0
		if len(leads) < preset.MinLeads {
			added := p.expander.TopUp(ctx, searchPlan, leads, preset.MinLeads, preset.MaxLeads)
			lead.AnnotateSizes(added, searchPlan.ICP.CompanySize)
			leads = append(leads, added...)
			expanded = len(added)
		}
		if preset.MaxLeads > 0 && len(leads) > preset.MaxLeads {
			leads = leads[:preset.MaxLeads]
		}
		return &model.StageResult{
			Metadata: map[string]any{
				"leads":    len(leads),
				"expanded": expanded,
			},
		}, nil
	})

	result := &model.SalesLeadReport{
		ProductName:          profile.ProductName,
		ProductProfile:       profile,
		ICP:                  &searchPlan.ICP,
		BroadLeads:           leads,
		TotalLeads:           len(leads),
		GeneratedAt:          time.Now(),
		SearchStrategiesUsed: strategies,
		TotalSearchQueries:   taskCount,
		ExecutionTimeSeconds: time.Since(start).Seconds(),
	}

	trackStage("reporting", func() (*model.StageResult, error) {
		paths, writeErr := p.assembler.WriteBroad(profile.ProductName, leads, time.Now())
		if writeErr != nil {
			return nil, writeErr
		}
		result.ReportFilepath = paths.Markdown
		result.CSVFilepath = paths.CSV
		return nil, nil
	})

	result.ExecutionTimeSeconds = time.Since(start).Seconds()
	return result
}

// runFull runs qualification, per-lead enrichment, and the narrative
// report for a full-mode run.
func (p *Pipeline) runFull(
	ctx context.Context,
	trackStage func(string, func() (*model.StageResult, error)) *model.StageResult,
	setStatus func(model.RunStatus),
	searchPlan *model.SearchPlan,
	profile *model.ProductProfile,
	profileData map[string]any,
	leads []model.RawLead,
	strategies []model.SearchStrategy,
	taskCount int,
	start time.Time,
) *model.SalesLeadReport {
	log := zap.L()

	// ===== Qualifying =====
	setStatus(model.RunStatusQualifying)
	var qualified []model.QualifiedLead
	var summary model.QualificationSummary

	trackStage("qualifying", func() (*model.StageResult, error) {
		msg := mustJSON(map[string]any{
			"product_profile": profileData,
			"icp":             searchPlan.ICP,
			"raw_leads":       leads,
		})
		reply, invokeErr := p.invoker.Invoke(ctx, agent.RoleQualifier, msg, qualifySchema())
		if invokeErr != nil {
			return nil, invokeErr
		}
		data := lead.RepairNestedLeads(extract.ParseReply(reply))
		qualified, summary = lead.BuildQualified(data)
		return &model.StageResult{
			Metadata: map[string]any{
				"qualified": len(qualified),
				"hot":       summary.HotLeads,
				"warm":      summary.WarmLeads,
				"cold":      summary.ColdLeads,
			},
		}, nil
	})
	log.Info("pipeline: qualification done",
		zap.Int("hot", summary.HotLeads),
		zap.Int("warm", summary.WarmLeads),
		zap.Int("cold", summary.ColdLeads),
	)

	// ===== Enriching (hot + warm only) =====
	setStatus(model.RunStatusEnriching)
	hotWarm := lead.FilterHotWarm(qualified)
	enrichments := make(map[string]lead.Enrichment, len(hotWarm))

	trackStage("enriching", func() (*model.StageResult, error) {
		for i, ql := range hotWarm {
			input := map[string]any{
				"company_name": ql.CompanyName,
				"website":      ql.Website,
				"industry":     ql.Industry,
				"product_type": profile.Description,
			}
			if content := p.fetchSite(ctx, ql.Website); content != "" {
				input["website_content"] = content
			}
			msg := mustJSON(input)
			log.Info("pipeline: enriching contact",
				zap.Int("lead", i+1),
				zap.Int("total", len(hotWarm)),
				zap.String("company", ql.CompanyName),
			)

			p.invoker.Reset(agent.RoleEnrichment)
			reply, invokeErr := p.invoker.Invoke(ctx, agent.RoleEnrichment, msg, enrichSchema())
			if invokeErr != nil {
				log.Warn("pipeline: enrichment failed",
					zap.String("company", ql.CompanyName),
					zap.Error(invokeErr),
				)
				continue
			}
			data := extract.ParseReply(reply)
			name, _ := data["company_name"].(string)
			if key := model.DedupKey(name); key != "" {
				enrichments[key] = lead.DecodeEnrichment(data)
			}
		}
		if len(hotWarm) == 0 {
			return &model.StageResult{Status: model.StageStatusSkipped}, nil
		}
		return &model.StageResult{
			Metadata: map[string]any{
				"attempted": len(hotWarm),
				"enriched":  len(enrichments),
			},
		}, nil
	})

	enriched := lead.BuildEnriched(qualified, enrichments)

	// ===== Reporting =====
	setStatus(model.RunStatusReporting)
	result := &model.SalesLeadReport{
		ProductName:          profile.ProductName,
		ProductProfile:       profile,
		ICP:                  &searchPlan.ICP,
		Leads:                enriched,
		TotalLeads:           summaryTotal(summary, len(qualified)),
		HotLeads:             summary.HotLeads,
		WarmLeads:            summary.WarmLeads,
		ColdLeads:            summary.ColdLeads,
		GeneratedAt:          time.Now(),
		SearchStrategiesUsed: strategies,
		TotalSearchQueries:   taskCount,
		ExecutionTimeSeconds: time.Since(start).Seconds(),
	}

	trackStage("reporting", func() (*model.StageResult, error) {
		narrative := p.writeNarrative(ctx, profileData, searchPlan, qualified, hotWarm, enrichments)
		paths, writeErr := p.assembler.WriteFull(profile.ProductName, narrative, enriched, time.Now())
		if writeErr != nil {
			return nil, writeErr
		}
		result.ReportFilepath = paths.Markdown
		result.CSVFilepath = paths.CSV
		result.XLSXFilepath = paths.XLSX
		return nil, nil
	})

	result.ExecutionTimeSeconds = time.Since(start).Seconds()
	return result
}

// writeNarrative asks the writer role for the Markdown report body,
// falling back through plain-text extraction to a fixed message.
// maxSiteRunes caps fetched page content fed to the enrichment agent.
const maxSiteRunes = 2000

// fetchSite pulls a lead's website as markdown when the search backend
// supports page fetching. Fetch failures only cost the extra context.
func (p *Pipeline) fetchSite(ctx context.Context, website string) string {
	fetcher, ok := p.provider.(search.Fetcher)
	if !ok || website == "" {
		return ""
	}
	content, err := fetcher.Fetch(ctx, website, maxSiteRunes)
	if err != nil {
		zap.L().Warn("pipeline: site fetch failed",
			zap.String("website", website),
			zap.Error(err),
		)
		return ""
	}
	return content
}

func (p *Pipeline) writeNarrative(
	ctx context.Context,
	profileData map[string]any,
	searchPlan *model.SearchPlan,
	qualified []model.QualifiedLead,
	hotWarm []model.QualifiedLead,
	enrichments map[string]lead.Enrichment,
) string {
	enrichmentResults := make([]lead.Enrichment, 0, len(hotWarm))
	for _, ql := range hotWarm {
		enrichmentResults = append(enrichmentResults, enrichments[model.DedupKey(ql.CompanyName)])
	}
	msg := mustJSON(map[string]any{
		"product_profile":    profileData,
		"icp":                searchPlan.ICP,
		"qualified_leads":    qualified,
		"enrichment_results": enrichmentResults,
	})

	reply, err := p.invoker.Invoke(ctx, agent.RoleWriter, msg, writerSchema())
	if err != nil {
		zap.L().Warn("pipeline: narrative generation failed", zap.Error(err))
		return fallbackNarrative
	}

	if reply.Structured != nil {
		if md, ok := reply.Structured["report_markdown"].(string); ok && md != "" {
			return md
		}
	}
	if text := extract.ReplyText(reply); text != "" {
		return text
	}
	zap.L().Warn("pipeline: narrative reply had no usable content")
	return fallbackNarrative
}

// finalize persists the run result; persistence failures are logged,
// not returned, because the report itself is already in hand.
func (p *Pipeline) finalize(ctx context.Context, runID string, result *model.SalesLeadReport, log *zap.Logger) {
	if err := p.store.UpdateRunResult(ctx, runID, result); err != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(err))
	}
	log.Info("pipeline: run complete",
		zap.String("run_id", runID),
		zap.Int("total_leads", result.TotalLeads),
		zap.Float64("elapsed_s", result.ExecutionTimeSeconds),
	)
}

// buildProfile decodes the profiler output, degrading to a minimal
// profile built from whatever fields survived extraction.
func buildProfile(data map[string]any, productInput string) *model.ProductProfile {
	raw, err := json.Marshal(data)
	if err == nil {
		var profile model.ProductProfile
		if err := json.Unmarshal(raw, &profile); err == nil && profile.ProductName != "" {
			return &profile
		}
	}

	fallback := &model.ProductProfile{ProductName: productInput}
	if name, ok := data["product_name"].(string); ok && name != "" {
		fallback.ProductName = name
	}
	if desc, ok := data["description"].(string); ok && desc != "" {
		fallback.Description = desc
	} else if raw, ok := data[extract.RawContentKey].(string); ok {
		fallback.Description = truncateRunes(raw, 500)
	}
	return fallback
}

func strategiesUsed(tasks []model.SearchTask) []model.SearchStrategy {
	strategies := make([]model.SearchStrategy, 0, len(tasks))
	for _, t := range tasks {
		strategies = append(strategies, t.Strategy)
	}
	return strategies
}

func summaryTotal(summary model.QualificationSummary, qualifiedCount int) int {
	if summary.TotalEvaluated > 0 {
		return summary.TotalEvaluated
	}
	return qualifiedCount
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("pipeline: marshal stage message", zap.Error(err))
		return "{}"
	}
	return string(raw)
}
