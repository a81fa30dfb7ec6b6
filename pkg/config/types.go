// Package config implements the layered configuration loader: parsing the
// global and local devobox.toml manifests, merging them, validating service
// definitions, and resolving recursive project dependencies into a
// deduplicated service list. Grounded on the teacher's
// pkg/config/app_config.go layering idiom.
package config

import (
	"fmt"
	"regexp"

	"github.com/devobox/devobox/pkg/engine"
)

// Kind is a service's role, used by the CLI's --dbs-only/--services-only
// filters and by `db`/`service` subcommand scoping.
type Kind string

const (
	Database Kind = "Database"
	Generic  Kind = "Generic"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidName reports whether name matches the service-name grammar.
func ValidName(name string) bool { return nameRegex.MatchString(name) }

// Healthcheck is the manifest's optional healthcheck block.
type Healthcheck struct {
	Command  string `yaml:"healthcheck_command,omitempty"`
	Interval string `yaml:"healthcheck_interval,omitempty"`
	Timeout  string `yaml:"healthcheck_timeout,omitempty"`
	Retries  int    `yaml:"healthcheck_retries,omitempty"`
}

// Service is the declarative unit of a spoke, as parsed from a services
// manifest entry.
type Service struct {
	Name        string   `yaml:"name"`
	Image       string   `yaml:"image"`
	Type        string   `yaml:"type,omitempty"`
	Ports       []string `yaml:"ports,omitempty"`
	Env         []string `yaml:"env,omitempty"`
	Volumes     []string `yaml:"volumes,omitempty"`
	Pod         string   `yaml:"pod,omitempty"`
	Healthcheck `yaml:",inline"`
}

// Kind resolves the service's role, defaulting to Generic.
func (s Service) Kind() Kind {
	switch s.Type {
	case "database", "Database":
		return Database
	default:
		return Generic
	}
}

// ToSpec converts a Service into the engine's imperative ContainerSpec. The
// hub spec is never built this way; see containersvc.HubSpec.
func (s Service) ToSpec() engine.ContainerSpec {
	spec := engine.ContainerSpec{
		Name:    s.Name,
		Image:   s.Image,
		Ports:   s.Ports,
		Env:     s.Env,
		Volumes: s.Volumes,
		Labels: map[string]string{
			"devobox.managed": "true",
		},
	}
	if s.Healthcheck.Command != "" {
		retries := s.Healthcheck.Retries
		if retries == 0 {
			retries = 3
		}
		spec.Healthcheck = &engine.Healthcheck{
			Command:  s.Healthcheck.Command,
			Interval: s.Healthcheck.Interval,
			Timeout:  s.Healthcheck.Timeout,
			Retries:  retries,
		}
	}
	return spec
}

// Paths is AppConfig's [paths] section.
type Paths struct {
	Containerfile string `toml:"containerfile"`
	ServicesYML   string `toml:"services_yml"`
}

// Build is AppConfig's [build] section.
type Build struct {
	ImageName string `toml:"image_name"`
}

// Container is AppConfig's [container] section.
type Container struct {
	Name    string `toml:"name"`
	Workdir string `toml:"workdir"`
}

// Dependencies is AppConfig's [dependencies] section.
type Dependencies struct {
	IncludeProjects []string `toml:"include_projects"`
}

// ProjectSection is AppConfig's optional [project] section, supplementing
// spec.md's project_up with a configurable startup command for the
// project's session first pane (spec.md §4.6 references
// `project.startup_command` without defining its home section).
type ProjectSection struct {
	StartupCommand string `toml:"startup_command"`
}

// AppConfig is the global-or-local manifest, after TOML parsing but before
// layer merging.
type AppConfig struct {
	Paths        Paths          `toml:"paths"`
	Build        Build          `toml:"build"`
	Container    Container      `toml:"container"`
	Dependencies Dependencies   `toml:"dependencies"`
	Project      ProjectSection `toml:"project"`
}

// Source records which layer contributed each top-level AppConfig section,
// for `config show --origin`. Not in spec.md; a supplemental debug
// affordance motivated by the replace-vs-union open question in spec.md §9.
type Source struct {
	Paths        string
	Build        string
	Container    string
	Dependencies string
	Project      string
}

// ResolvedConfig is the final, merged, closed configuration for one
// invocation.
type ResolvedConfig struct {
	AppConfig
	Services []Service
	Source   Source
}

// Project is a directory under the configured code root that contains a
// local manifest.
type Project struct {
	Name   string
	Path   string
	Config AppConfig
}

// DefaultConfig returns the built-in defaults, the first and lowest-priority
// layer in the resolution order.
func DefaultConfig() AppConfig {
	return AppConfig{
		Paths: Paths{
			Containerfile: "Containerfile",
			ServicesYML:   "services.yml",
		},
		Build: Build{
			ImageName: "devobox-img",
		},
		Container: Container{
			Name:    "devobox",
			Workdir: "/home/dev",
		},
		Dependencies: Dependencies{},
	}
}

// ValidationError is returned by Load/Validate on any validation failure; it
// is always wrapped by the caller as errdomain ConfigError.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
