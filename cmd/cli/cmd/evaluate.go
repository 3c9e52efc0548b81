package cmd

import (
	"github.com/spf13/cobra"

	"isp-billing/core/engine"
	"isp-billing/core/output"
	"isp-billing/internal/logging"
)

var (
	evaluatePlans    string
	evaluateUsage    usageFlags
	evaluateAssigned string
	evaluateExclude  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Classify usage, recommend a plan and compare it with the assigned one",
	Long: `Run the whole calculation: classify snapshots, recommend a plan and,
with --assigned, price the current plan and advise keeping, upgrading,
downgrading or switching.

Examples:
  ispbill evaluate --plans plans.yaml --snapshots snapshots.yaml --assigned basic
  ispbill evaluate --owner 42 --assigned basic --format markdown`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluatePlans, "plans", "p", "", "plan catalog file (.json, .yaml, .hcl); default from config")
	evaluateCmd.Flags().StringVarP(&evaluateAssigned, "assigned", "a", "", "ID of the owner's current plan")
	evaluateCmd.Flags().BoolVar(&evaluateExclude, "exclude-free-tier", false, "skip zero-price plans when looking for a covering plan")
	evaluateUsage.register(evaluateCmd, false)
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snaps, err := loadSnapshots(ctx, &evaluateUsage)
	if err != nil {
		return err
	}
	plans, err := loadPlans(ctx, evaluatePlans)
	if err != nil {
		return err
	}

	result, err := engine.Evaluate(engine.Input{
		Snapshots:       snaps,
		Plans:           plans,
		ExcludeFreeTier: excludeFreeTier(cmd, evaluateExclude),
		AssignedPlanID:  evaluateAssigned,
	})
	if err != nil {
		return err
	}

	logging.Debug("evaluation complete",
		logging.Plan(result.Recommendation.Plan.ID),
		logging.Billable(result.Usage.TotalBillable))
	return render(cmd, &output.Report{
		Evaluation: result,
		Metadata:   output.Metadata{InputHash: result.InputHash},
	})
}
