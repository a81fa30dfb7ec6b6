package main

import (
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/pkg/config"
)

var (
	upDBsOnly      bool
	upServicesOnly bool
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start spokes and the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closer, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		filter := config.Kind("")
		switch {
		case upDBsOnly:
			filter = config.Database
		case upServicesOnly:
			filter = config.Generic
		}

		return app.Orch.Up(cmd.Context(), app.Cfg, filter)
	},
}

func init() {
	upCmd.Flags().BoolVar(&upDBsOnly, "dbs-only", false, "start only Database-kind services")
	upCmd.Flags().BoolVar(&upServicesOnly, "services-only", false, "start only Generic-kind services")
}
