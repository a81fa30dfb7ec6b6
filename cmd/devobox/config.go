package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configShowOrigin bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closer, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		cfg := app.Cfg
		fmt.Printf("[paths]\ncontainerfile = %q\nservices_yml = %q\n\n", cfg.Paths.Containerfile, cfg.Paths.ServicesYML)
		fmt.Printf("[build]\nimage_name = %q\n\n", cfg.Build.ImageName)
		fmt.Printf("[container]\nname = %q\nworkdir = %q\n\n", cfg.Container.Name, cfg.Container.Workdir)
		fmt.Printf("[dependencies]\ninclude_projects = %v\n\n", cfg.Dependencies.IncludeProjects)
		fmt.Printf("[project]\nstartup_command = %q\n", cfg.Project.StartupCommand)

		if configShowOrigin {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintf(os.Stderr, "# origin: paths=%s build=%s container=%s dependencies=%s project=%s\n",
				cfg.Source.Paths, cfg.Source.Build, cfg.Source.Container, cfg.Source.Dependencies, cfg.Source.Project)
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowOrigin, "origin", false, "also print which layer contributed each section")
	configCmd.AddCommand(configShowCmd)
}
