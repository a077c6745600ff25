package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Run the catalog service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger(cfg, os.Stdout)

			svc, err := newCatalogService(cfg, log)
			if err != nil {
				return err
			}
			return runServices(cmd.Context(), log, svc)
		},
	}
}

func newGatewayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Run the recognition gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger(cfg, os.Stdout)

			svc, err := newGatewayService(cfg, log)
			if err != nil {
				return err
			}
			return runServices(cmd.Context(), log, svc)
		},
	}
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog and the gateway in one process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger(cfg, os.Stdout)

			catalog, err := newCatalogService(cfg, log)
			if err != nil {
				return err
			}
			gateway, err := newGatewayService(cfg, log)
			if err != nil {
				_ = catalog.close()
				return err
			}
			return runServices(cmd.Context(), log, catalog, gateway)
		},
	}
}
