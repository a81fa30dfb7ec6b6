package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	shellWithDBs  bool
	shellAutoStop bool
	devAutoStop   bool
)

func runShell(cmd *cobra.Command, withDBs, autoStop bool) error {
	app, closer, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer closer()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	code, err := app.Orch.Shell(cmd.Context(), app.Cfg, withDBs, autoStop, cwd)
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Attach to the hub (the default when no subcommand is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd, shellWithDBs, shellAutoStop)
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Alias for shell --with-dbs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd, true, devAutoStop)
	},
}

func init() {
	shellCmd.Flags().BoolVar(&shellWithDBs, "with-dbs", false, "start database services before attaching")
	shellCmd.Flags().BoolVar(&shellAutoStop, "auto-stop", false, "run down after the shell exits")
	devCmd.Flags().BoolVar(&devAutoStop, "auto-stop", false, "run down after the shell exits")
}
