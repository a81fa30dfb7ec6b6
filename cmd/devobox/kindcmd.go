package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devobox/devobox/pkg/config"
)

// newKindCommandGroup builds the start|stop|restart|status subcommand set
// shared by `db` and `service`, each scoped to one config.Kind and an
// optional single NAME argument.
func newKindCommandGroup(use, short string, kind config.Kind) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: short,
	}

	group.AddCommand(
		&cobra.Command{
			Use:   "start [NAME]",
			Short: "Start " + use + " containers",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, closer, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer closer()

				names := namesOf(filterServices(app.Cfg, kind, args))
				return app.Orch.StartNames(cmd.Context(), app.Cfg, names)
			},
		},
		&cobra.Command{
			Use:   "stop [NAME]",
			Short: "Stop " + use + " containers",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, closer, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer closer()

				names := namesOf(filterServices(app.Cfg, kind, args))
				errs := app.Orch.Svc.StopAll(cmd.Context(), names)
				if len(errs) > 0 {
					return errs[0]
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "restart [NAME]",
			Short: "Restart " + use + " containers",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, closer, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer closer()

				names := namesOf(filterServices(app.Cfg, kind, args))
				errs := app.Orch.Restart(cmd.Context(), app.Cfg, names)
				if len(errs) > 0 {
					return errs[0]
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status [NAME]",
			Short: "Show state and health of " + use + " containers",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, closer, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer closer()

				scoped := filterServices(app.Cfg, kind, args)
				want := map[string]bool{}
				for _, s := range scoped {
					want[s.Name] = true
				}

				rows, err := app.Orch.Status(cmd.Context(), app.Cfg)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tKIND\tSTATE\tHEALTH")
				for _, r := range rows {
					if !want[r.Name] {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Kind, r.State, r.Health)
				}
				return w.Flush()
			},
		},
	)

	return group
}

func filterServices(cfg *config.ResolvedConfig, kind config.Kind, nameArgs []string) []config.Service {
	var out []config.Service
	for _, s := range cfg.Services {
		if s.Kind() != kind {
			continue
		}
		if len(nameArgs) > 0 && s.Name != nameArgs[0] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func namesOf(services []config.Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Name
	}
	return out
}

var dbCmd = newKindCommandGroup("db", "Manage Database-kind spokes", config.Database)
var serviceCmd = newKindCommandGroup("service", "Manage Generic-kind spokes", config.Generic)
