package main

import (
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/pkg/config"
)

var initSkipCleanup bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install configs and build the hub and its services",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := config.ConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		if err := config.WriteDefaultManifests(configDir); err != nil {
			return err
		}

		app, closer, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		return app.Orch.Build(cmd.Context(), app.Cfg, initSkipCleanup)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initSkipCleanup, "skip-cleanup", false, "skip pruning before build")
}
