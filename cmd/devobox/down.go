package main

import (
	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop spokes and the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closer, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		errs := app.Orch.Down(cmd.Context(), app.Cfg)
		if len(errs) > 0 {
			return errs[0]
		}
		return nil
	},
}
