package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/model"
	"github.com/insightflow/leadscout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server for lead search requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := buildMux(ctx, env.Pipeline, env.Store)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		zap.L().Info("server stopped", zap.Float64("est_cost_usd", env.EstimatedCost()))
		return nil
	},
}

// runStarter starts pipeline runs. Satisfied by *pipeline.Pipeline.
type runStarter interface {
	Run(ctx context.Context, productInput string, mode model.RunMode, depth string) (*model.SalesLeadReport, error)
}

// buildMux wires the API routes. The pipeline may be nil in tests; the
// async run handler checks before dispatching.
func buildMux(ctx context.Context, p runStarter, st store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// The per-role agent sessions behind the pipeline are not safe for
	// concurrent runs, so at most one run may be in flight.
	var runActive atomic.Bool

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/runs", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Product string `json:"product"`
			Mode    string `json:"mode"`
			Depth   string `json:"depth"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Product == "" {
			http.Error(w, `{"error":"product is required"}`, http.StatusBadRequest)
			return
		}
		mode := model.RunMode(req.Mode)
		if mode == "" {
			mode = model.ModeFull
		}
		if mode != model.ModeBroad && mode != model.ModeFull {
			http.Error(w, `{"error":"mode must be broad or full"}`, http.StatusBadRequest)
			return
		}
		depth := req.Depth
		if depth == "" {
			depth = "standard"
		}

		if !runActive.CompareAndSwap(false, true) {
			http.Error(w, `{"error":"a run is already in progress"}`, http.StatusConflict)
			return
		}

		// The search runs for minutes; respond immediately and let the
		// caller poll the runs endpoints for progress.
		go func() {
			defer runActive.Store(false)
			if p == nil {
				return
			}
			result, err := p.Run(ctx, req.Product, mode, depth)
			if err != nil {
				zap.L().Error("api run failed",
					zap.String("product", req.Product),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("api run complete",
				zap.String("product", req.Product),
				zap.Int("total_leads", result.TotalLeads),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  "accepted",
			"product": req.Product,
			"mode":    string(mode),
			"depth":   depth,
		})
	})

	mux.HandleFunc("GET /api/runs", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, `{"error":"store unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
			Mode:   model.RunMode(r.URL.Query().Get("mode")),
			Limit:  limit,
		}
		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("api list runs failed", zap.Error(err))
			http.Error(w, `{"error":"list runs failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	})

	mux.HandleFunc("GET /api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, `{"error":"store unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		run, err := st.GetRun(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
