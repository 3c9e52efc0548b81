package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"isp-billing/adapters/sources"
	"isp-billing/api"
	"isp-billing/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the /v1 JSON API. Requests that omit plans use the configured
catalog source; requests with an owner_id use the configured snapshot source.

Examples:
  ispbill serve --addr :8080
  ISPBILL_CATALOG_SOURCE=postgres ISPBILL_CATALOG_DSN=postgres://... ispbill serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address; default from config")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	set, err := sources.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer set.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := api.NewServer(api.Options{
		Version:         Version,
		Catalog:         set.Catalog,
		Snapshots:       set.Snapshots,
		ExcludeFreeTier: cfg.Billing.ExcludeFreeTier,
	})
	return srv.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
