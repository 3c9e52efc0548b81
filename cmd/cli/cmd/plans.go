package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"isp-billing/core/engine"
	"isp-billing/core/output"
	"isp-billing/core/ui"
	"isp-billing/internal/config"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Inspect plan catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var plansValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a plan catalog file",
	Long: `Decode and validate a catalog: every plan needs an ID, prices and rates
must not be negative, limits must be whole non-negative numbers or
unlimited, and IDs must be unique.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plans, err := loadPlans(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := ui.NewWriter(cmd.OutOrStdout(), config.Get().Output.NoColor)
		w.Success("%s: %d valid plans", args[0], len(plans))
		return nil
	},
}

var plansListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List a catalog in selection order",
	Long: `List plans sorted by price, then connection limit (unlimited last),
then ID. Without a file the configured catalog source is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		plans, err := loadPlans(cmd.Context(), path)
		if err != nil {
			return err
		}
		ranked, err := engine.Rank(plans)
		if err != nil {
			return err
		}
		if len(ranked) == 0 {
			return fmt.Errorf("catalog is empty")
		}
		return render(cmd, &output.Report{Plans: ranked})
	},
}

func init() {
	plansCmd.AddCommand(plansValidateCmd)
	plansCmd.AddCommand(plansListCmd)
	rootCmd.AddCommand(plansCmd)
}
