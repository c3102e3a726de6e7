package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/cost"
	"github.com/insightflow/leadscout/internal/pipeline"
	"github.com/insightflow/leadscout/internal/report"
	"github.com/insightflow/leadscout/internal/search"
	"github.com/insightflow/leadscout/internal/store"
	"github.com/insightflow/leadscout/pkg/agent"
)

// pipelineEnv holds the initialized store, search provider, and
// pipeline needed by the run/serve/runs commands.
type pipelineEnv struct {
	Store    store.Store
	Provider search.Provider
	Invoker  *agent.Client
	Pipeline *pipeline.Pipeline
}

// EstimatedCost returns the estimated model spend in USD so far.
func (pe *pipelineEnv) EstimatedCost() float64 {
	if pe.Invoker == nil {
		return 0
	}
	rates, err := cost.LoadRates(cfg.Cost.RatesFile)
	if err != nil {
		zap.L().Warn("falling back to default model rates", zap.Error(err))
		rates = cost.DefaultRates()
	}
	usage := make(map[string][2]int64)
	for model, u := range pe.Invoker.Usage() {
		usage[model] = [2]int64{u.InputTokens, u.OutputTokens}
	}
	return cost.NewCalculator(rates).Total(usage)
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Provider != nil {
		_ = pe.Provider.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadscout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, agent invoker, and search provider,
// then builds the Pipeline. A failure here aborts the run; callers
// should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (LEADSCOUT_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	provider, err := search.NewProvider(search.Config{
		Backend:           cfg.Search.Provider,
		BochaAPIKey:       cfg.Bocha.Key,
		JinaAPIKey:        cfg.Jina.Key,
		BochaBaseURL:      cfg.Bocha.BaseURL,
		JinaBaseURL:       cfg.Jina.BaseURL,
		JinaSearchBaseURL: cfg.Jina.SearchBaseURL,
		QPS:               cfg.Search.QPS,
	})
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "init search provider")
	}

	models := make(map[agent.Role]string, len(cfg.Anthropic.Models))
	for role, m := range cfg.Anthropic.Models {
		models[agent.Role(role)] = m
	}
	invoker := agent.NewClient(cfg.Anthropic.Key, agent.Config{
		DefaultModel:  cfg.Anthropic.DefaultModel,
		Models:        models,
		SystemPrompts: pipeline.SystemPrompts(),
		MaxTokens:     cfg.Anthropic.MaxTokens,
	})

	assembler := report.NewAssembler(&report.OSFileStore{}, cfg.Output.Dir, cfg.Output.XLSX)

	return &pipelineEnv{
		Store:    st,
		Provider: provider,
		Invoker:  invoker,
		Pipeline: pipeline.New(cfg, st, invoker, provider, assembler),
	}, nil
}
