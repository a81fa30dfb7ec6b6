// Package discovery enumerates candidate projects under a configured code
// root, backing the `project list` command. Grounded on the teacher's
// directory-scanning convention for compose-project discovery.
package discovery

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/devobox/devobox/pkg/config"
)

// ListProjects scans the immediate children of codeRoot, admitting every
// subdirectory that contains a local manifest file, sorted by name. No
// recursive descent; no symlink traversal beyond the root.
func ListProjects(codeRoot string) ([]config.Project, error) {
	entries, err := os.ReadDir(codeRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var projects []config.Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(codeRoot, entry.Name())
		manifestPath := filepath.Join(dir, "devobox.toml")
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}

		cfg, _, err := config.LoadLayer(manifestPath)
		if err != nil || cfg == nil {
			continue
		}

		projects = append(projects, config.Project{
			Name:   entry.Name(),
			Path:   dir,
			Config: *cfg,
		})
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// FindProject locates a single project by name under codeRoot, for
// `project up NAME`/`project info`.
func FindProject(codeRoot, name string) (*config.Project, error) {
	projects, err := ListProjects(codeRoot)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}
