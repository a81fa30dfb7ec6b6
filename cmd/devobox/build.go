package main

import (
	"github.com/spf13/cobra"
)

var buildSkipCleanup bool

func runBuild(cmd *cobra.Command) error {
	app, closer, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer closer()

	return app.Orch.Build(cmd.Context(), app.Cfg, buildSkipCleanup)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the image and (re)create all containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd)
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Alias for build",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd)
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildSkipCleanup, "skip-cleanup", false, "skip pruning before build")
	rebuildCmd.Flags().BoolVar(&buildSkipCleanup, "skip-cleanup", false, "skip pruning before build")
}
