package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"isp-billing/adapters/file"
	"isp-billing/adapters/sources"
	"isp-billing/core/output"
	"isp-billing/core/types"
	"isp-billing/internal/config"
	"isp-billing/internal/errors"
)

// usageFlags selects where billable usage comes from
type usageFlags struct {
	snapshotsFile string
	ownerID       string
	billable      int64
}

func (u *usageFlags) register(cmd *cobra.Command, withBillable bool) {
	cmd.Flags().StringVarP(&u.snapshotsFile, "snapshots", "s", "", "connection snapshot file (.json, .yaml)")
	cmd.Flags().StringVar(&u.ownerID, "owner", "", "owner ID to fetch snapshots for from the configured provider")
	if withBillable {
		cmd.Flags().Int64VarP(&u.billable, "billable", "b", 0, "billable connection count, instead of snapshots")
	}
}

// loadSnapshots reads snapshots from --snapshots, or from the configured
// provider for --owner
func loadSnapshots(ctx context.Context, u *usageFlags) ([]types.ConnectionSnapshot, error) {
	if u.snapshotsFile != "" {
		return file.NewSnapshotProvider(u.snapshotsFile).Snapshots(ctx, u.ownerID)
	}
	if u.ownerID == "" {
		return nil, errors.Input("--snapshots or --owner is required")
	}

	set, err := sources.Open(ctx, config.Get())
	if err != nil {
		return nil, err
	}
	defer set.Close()
	if set.Snapshots == nil {
		return nil, errors.New(errors.TypeConfig, "--owner needs a snapshots source in the config")
	}
	return set.Snapshots.Snapshots(ctx, u.ownerID)
}

// loadPlans reads the catalog from path, or from the configured catalog
// provider when path is empty
func loadPlans(ctx context.Context, path string) ([]types.SubscriptionPlan, error) {
	if path != "" {
		return file.NewCatalogProvider(path).Plans(ctx)
	}

	set, err := sources.Open(ctx, config.Get())
	if err != nil {
		return nil, err
	}
	defer set.Close()
	if set.Catalog == nil {
		return nil, errors.New(errors.TypeConfig, "--plans is required when no catalog source is configured")
	}
	return set.Catalog.Plans(ctx)
}

// excludeFreeTier is the flag value when given, else the configured default
func excludeFreeTier(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("exclude-free-tier") {
		return flag
	}
	return config.Get().Billing.ExcludeFreeTier
}

// render writes report in the configured format
func render(cmd *cobra.Command, report *output.Report) error {
	cfg := config.Get()

	format, err := output.ParseFormat(cfg.Output.DefaultFormat)
	if err != nil {
		return err
	}

	verbosity := 1
	if verbose {
		verbosity = 2
	}
	registry := output.NewRegistry(output.Options{
		CurrencySymbol: cfg.Output.CurrencySymbol,
		NoColor:        cfg.Output.NoColor,
		Verbosity:      verbosity,
	})
	f, ok := registry.GetFormatter(format)
	if !ok {
		return fmt.Errorf("no formatter for %s", format)
	}

	report.Metadata.Currency = cfg.Billing.Currency
	report.Metadata.Version = Version
	return f.Render(cmd.OutOrStdout(), report)
}
