package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vitelis_backend/internal/auth"
	"vitelis_backend/internal/events"
	"vitelis_backend/platform/validator"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the root admin from ROOT_ADMIN_EMAIL and ROOT_ADMIN_PASSWORD",
	Long:  "Creates or promotes the root admin once per database. Running it again after a successful seed does nothing.",
	RunE:  runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	rt, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	authModule, err := auth.NewModule(rt.pool, rt.cfg, events.NewInMemoryBus(rt.log), validator.New(), rt.log)
	if err != nil {
		return err
	}
	if err := authModule.Bootstrap(cmd.Context(), rt.cfg); err != nil {
		return fmt.Errorf("bootstrap root admin: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "root admin bootstrap complete")
	return nil
}
