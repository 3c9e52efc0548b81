package cmd

import (
	"github.com/spf13/cobra"

	"isp-billing/core/catalog"
	"isp-billing/core/engine"
	"isp-billing/core/output"
	"isp-billing/internal/errors"
)

var (
	costPlans  string
	costPlanID string
	costUsage  usageFlags
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Compute the monthly charge of a plan",
	Long: `Price a plan at the given usage. Within the limit the flat price applies;
over the limit every billable connection is charged at the per-connection
price instead.

Examples:
  ispbill cost --plans plans.yaml --plan basic --billable 250
  ispbill cost --plan basic --snapshots snapshots.yaml`,
	Args: cobra.NoArgs,
	RunE: runCost,
}

func init() {
	costCmd.Flags().StringVarP(&costPlans, "plans", "p", "", "plan catalog file (.json, .yaml, .hcl); default from config")
	costCmd.Flags().StringVar(&costPlanID, "plan", "", "ID of the plan to price")
	_ = costCmd.MarkFlagRequired("plan")
	costUsage.register(costCmd, true)
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	plans, err := loadPlans(cmd.Context(), costPlans)
	if err != nil {
		return err
	}
	plan, ok := catalog.Find(plans, costPlanID)
	if !ok {
		return errors.NotFound("plan", costPlanID)
	}

	billable, usage, err := resolveBillable(cmd, &costUsage)
	if err != nil {
		return err
	}
	c, err := engine.Cost(plan, billable)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{Usage: usage, Cost: &c})
}
