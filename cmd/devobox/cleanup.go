package main

import (
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/pkg/orchestrator"
)

var cleanupFlags orchestrator.CleanupFlags

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune stopped containers, images, volumes, and build cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closer, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		return app.Orch.Cleanup(cmd.Context(), cleanupFlags)
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupFlags.Containers, "containers", false, "prune stopped containers")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.Images, "images", false, "prune dangling images")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.Volumes, "volumes", false, "prune unused volumes")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.BuildCache, "build-cache", false, "prune the build cache")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.Nuke, "nuke", false, "remove everything, including named volumes")
}
