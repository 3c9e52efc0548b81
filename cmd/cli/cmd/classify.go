package cmd

import (
	"github.com/spf13/cobra"

	"isp-billing/core/engine"
	"isp-billing/core/output"
)

var classifyUsage usageFlags

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Aggregate connection snapshots into billable usage",
	Long: `Sum connections per state across every ISP and count the billable ones.

Examples:
  ispbill classify --snapshots snapshots.yaml
  ispbill classify --owner 42 --format json`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	classifyUsage.register(classifyCmd, false)
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	snaps, err := loadSnapshots(cmd.Context(), &classifyUsage)
	if err != nil {
		return err
	}
	usage, err := engine.Classify(snaps)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{Usage: &usage})
}
