package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/model"
)

var (
	runMode  string
	runDepth string
)

var runCmd = &cobra.Command{
	Use:   "run <product description>",
	Short: "Run a lead search for a product",
	Long:  "Profiles the product, plans and executes search tasks, and writes the lead report artifacts. The product argument may be a bare name or a full description.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		productInput := strings.Join(args, " ")

		mode := model.RunMode(runMode)
		if mode != model.ModeBroad && mode != model.ModeFull {
			return eris.Errorf("invalid mode %q: must be broad or full", runMode)
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, productInput, mode, runDepth)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("lead search complete",
			zap.String("product", result.ProductName),
			zap.Int("total_leads", result.TotalLeads),
			zap.Int("hot", result.HotLeads),
			zap.Int("warm", result.WarmLeads),
			zap.String("report", result.ReportFilepath),
			zap.Float64("est_cost_usd", env.EstimatedCost()),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "full", "pipeline mode: broad (volume) or full (scored + enriched)")
	runCmd.Flags().StringVar(&runDepth, "depth", "standard", "search depth preset: quick, standard, or deep")
	rootCmd.AddCommand(runCmd)
}
