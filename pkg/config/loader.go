package config

import (
	"os"
	"path/filepath"
)

// Load produces a validated, closed ResolvedConfig for invocationDir
// (normally the current working directory), per spec.md §4.3's full
// resolution order: built-in defaults, the global manifest at
// configDir/devobox.toml, the local manifest at invocationDir/devobox.toml,
// then the transitive dependency closure, then validation.
func Load(invocationDir, configDir string) (*ResolvedConfig, error) {
	globalPath := filepath.Join(configDir, "devobox.toml")
	localPath := filepath.Join(invocationDir, "devobox.toml")

	global, _, err := LoadLayer(globalPath)
	if err != nil {
		return nil, validationErrorf("reading global manifest %s: %v", globalPath, err)
	}
	local, _, err := LoadLayer(localPath)
	if err != nil {
		return nil, validationErrorf("reading local manifest %s: %v", localPath, err)
	}

	merged, source, err := MergeLayers(global, local)
	if err != nil {
		return nil, err
	}

	ownServicesPath := resolveServicesPath(invocationDir, merged)
	ownServices, err := loadServicesFile(ownServicesPath)
	if err != nil {
		return nil, validationErrorf("reading services manifest %s: %v", ownServicesPath, err)
	}

	selfPath, err := canonicalize(invocationDir, ".")
	if err != nil {
		selfPath = invocationDir
	}
	ancestors := map[string]bool{selfPath: true}
	finished := map[string]bool{}

	depServices, err := resolveClosure(invocationDir, merged.Dependencies.IncludeProjects, ancestors, finished)
	if err != nil {
		return nil, err
	}

	allServices := append(depServices, ownServices...)

	if err := Validate(merged.Container.Name, allServices); err != nil {
		return nil, err
	}

	return &ResolvedConfig{
		AppConfig: merged,
		Services:  allServices,
		Source:    source,
	}, nil
}

// WriteDefaultManifests installs the built-in containerfile/services/devobox
// manifests into dir, backing the `install` CLI verb. Existing files are
// left untouched.
func WriteDefaultManifests(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	defaults := map[string]string{
		"devobox.toml": defaultAppConfigTOML,
		"services.yml": defaultServicesYAML,
		"Containerfile": defaultContainerfile,
	}

	for name, content := range defaults {
		path := filepath.Join(dir, name)
		if exists, _ := fileExists(path); exists {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

const defaultAppConfigTOML = `[paths]
containerfile = "Containerfile"
services_yml = "services.yml"

[build]
image_name = "devobox-img"

[container]
name = "devobox"
workdir = "/home/dev"

[dependencies]
include_projects = []
`

const defaultServicesYAML = `services: []
`

const defaultContainerfile = `FROM docker.io/library/debian:bookworm-slim
RUN useradd -m dev
USER dev
WORKDIR /home/dev
`
