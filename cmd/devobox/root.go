package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	flagConfigDir string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:     "devobox",
	Short:   "Provision and attach to a persistent development container and its services",
	Version: version,
	// Running devobox with no subcommand is the same as `devobox shell`.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd, false, false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "override the config directory")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(devCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command. The first SIGINT cancels the command's
// context (an in-progress health wait then ends with UserAbort); a second
// one gets the default behavior.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()
	return rootCmd.ExecuteContext(ctx)
}
