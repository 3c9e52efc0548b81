package cmd

import (
	"github.com/spf13/cobra"

	"isp-billing/core/engine"
	"isp-billing/core/output"
	"isp-billing/core/types"
	"isp-billing/internal/errors"
)

var (
	recommendPlans   string
	recommendUsage   usageFlags
	recommendExclude bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the cheapest plan covering billable usage",
	Long: `Rank the catalog by price and pick the first plan whose connection
limit covers billable usage. When no plan covers it, the highest-capacity
plan is returned and flagged.

Examples:
  ispbill recommend --plans plans.yaml --billable 150
  ispbill recommend --plans plans.yaml --snapshots snapshots.yaml --exclude-free-tier`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendPlans, "plans", "p", "", "plan catalog file (.json, .yaml, .hcl); default from config")
	recommendCmd.Flags().BoolVar(&recommendExclude, "exclude-free-tier", false, "skip zero-price plans when looking for a covering plan")
	recommendUsage.register(recommendCmd, true)
	rootCmd.AddCommand(recommendCmd)
}

// resolveBillable uses --billable when given, otherwise classifies snapshots
func resolveBillable(cmd *cobra.Command, u *usageFlags) (int64, *types.AggregatedUsage, error) {
	if cmd.Flags().Changed("billable") {
		if u.billable < 0 {
			return 0, nil, errors.Newf(errors.TypeInput, "--billable must not be negative, got %d", u.billable)
		}
		return u.billable, nil, nil
	}
	snaps, err := loadSnapshots(cmd.Context(), u)
	if err != nil {
		return 0, nil, err
	}
	usage, err := engine.Classify(snaps)
	if err != nil {
		return 0, nil, err
	}
	return usage.TotalBillable, &usage, nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	billable, usage, err := resolveBillable(cmd, &recommendUsage)
	if err != nil {
		return err
	}
	plans, err := loadPlans(cmd.Context(), recommendPlans)
	if err != nil {
		return err
	}

	rec, err := engine.Recommend(billable, plans, excludeFreeTier(cmd, recommendExclude))
	if err != nil {
		return err
	}
	c, err := engine.Cost(rec.Plan, billable)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{Usage: usage, Recommendation: &rec, Cost: &c})
}
