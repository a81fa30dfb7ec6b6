package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devobox/devobox/pkg/config"
	"github.com/devobox/devobox/pkg/discovery"
	"github.com/devobox/devobox/pkg/errdomain"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Discover and enter projects under the code root",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects under the code root",
	RunE: func(cmd *cobra.Command, args []string) error {
		codeRoot := config.CodeRoot()
		projects, err := discovery.ListProjects(codeRoot)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Path)
		}
		return w.Flush()
	},
}

var projectUpCmd = &cobra.Command{
	Use:   "up NAME",
	Short: "Start a project's spokes and attach a session to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closer, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		name := args[0]
		codeRoot := config.CodeRoot()
		project, err := discovery.FindProject(codeRoot, name)
		if err != nil {
			return err
		}
		if project == nil {
			return errdomain.Newf(errdomain.ConfigError, "no project named %q under %s", name, codeRoot)
		}

		projectCfg, err := config.Load(project.Path, app.ConfigDir)
		if err != nil {
			return errdomain.Newf(errdomain.ConfigError, "%v", err)
		}

		code, err := app.Orch.ProjectUp(cmd.Context(), name, project.Path, projectCfg)
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

var projectInfoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show a project's resolved services",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		codeRoot := config.CodeRoot()
		project, err := discovery.FindProject(codeRoot, name)
		if err != nil {
			return err
		}
		if project == nil {
			return errdomain.Newf(errdomain.ConfigError, "no project named %q under %s", name, codeRoot)
		}

		configDir, err := config.ConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		projectCfg, err := config.Load(project.Path, configDir)
		if err != nil {
			return errdomain.Newf(errdomain.ConfigError, "%v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tIMAGE")
		for _, s := range projectCfg.Services {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Kind(), s.Image)
		}
		return w.Flush()
	},
}

func init() {
	projectCmd.AddCommand(projectListCmd, projectUpCmd, projectInfoCmd)
}
