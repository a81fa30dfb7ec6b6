package main

import (
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/pkg/config"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Copy default manifests into the config directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := config.ConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		return config.WriteDefaultManifests(configDir)
	},
}
