// Package main is the entry point for the ISP billing API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"isp-billing/adapters/sources"
	"isp-billing/api"
	"isp-billing/internal/config"
	"isp-billing/internal/logging"
)

var version = "dev"

func main() {
	cfgPath := flag.String("config", "", "config file, YAML or JSON")
	addr := flag.String("addr", "", "server address; default from config")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	set, err := sources.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer set.Close()

	if addr == "" {
		addr = cfg.Server.Addr
	}

	logging.Info("ISP billing server starting",
		zap.String("version", version),
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("snapshots", cfg.Snapshots.Source))

	srv := api.NewServer(api.Options{
		Version:         version,
		Catalog:         set.Catalog,
		Snapshots:       set.Snapshots,
		ExcludeFreeTier: cfg.Billing.ExcludeFreeTier,
	})
	return srv.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
