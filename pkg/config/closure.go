package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// resolveClosure recursively loads each project named in include_projects,
// appending dependency services ahead of the caller's own (scenario S3:
// A includes B; loading A yields [db, app] with B's db first). ancestors is
// the current recursion stack (canonicalized absolute paths), used to
// detect a true cycle distinct from a diamond re-visit of an
// already-finished project, which is grounded on spec.md §9's "visited-set
// during recursive load" note, sharpened here so S4 produces a named
// ConfigError rather than silently truncating.
func resolveClosure(projectDir string, includePaths []string, ancestors, finished map[string]bool) ([]Service, error) {
	var out []Service

	for _, rel := range includePaths {
		depPath, err := canonicalize(projectDir, rel)
		if err != nil {
			return nil, validationErrorf("dependency path %q does not exist: %v", rel, err)
		}

		if ancestors[depPath] {
			cyclePath := append(sortedKeys(ancestors), depPath)
			return nil, validationErrorf("dependency cycle detected: %s", strings.Join(cyclePath, " -> "))
		}
		if finished[depPath] {
			continue // diamond re-visit: already fully resolved, empty contribution
		}

		depManifest := filepath.Join(depPath, "devobox.toml")
		if ok, _ := fileExists(depManifest); !ok {
			return nil, validationErrorf("dependency %q has no readable devobox.toml at %s", rel, depManifest)
		}
		depConfig, _, err := LoadLayer(depManifest)
		if err != nil {
			return nil, validationErrorf("loading dependency manifest %s: %v", depManifest, err)
		}

		depServicesPath := resolveServicesPath(depPath, *depConfig)
		depOwnServices, err := loadServicesFile(depServicesPath)
		if err != nil {
			return nil, err
		}

		nextAncestors := cloneSet(ancestors)
		nextAncestors[depPath] = true

		depClosureServices, err := resolveClosure(depPath, depConfig.Dependencies.IncludeProjects, nextAncestors, finished)
		if err != nil {
			return nil, err
		}

		out = append(out, depClosureServices...)
		out = append(out, depOwnServices...)

		finished[depPath] = true
	}

	return out, nil
}

func canonicalize(baseDir, rel string) (string, error) {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, rel)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, err
		}
		return abs, err
	}
	return resolved, nil
}

func resolveServicesPath(dir string, cfg AppConfig) string {
	name := cfg.Paths.ServicesYML
	if name == "" {
		name = DefaultConfig().Paths.ServicesYML
	}
	return filepath.Join(dir, name)
}

func loadServicesFile(path string) ([]Service, error) {
	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseServicesManifest(data)
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

func sortedKeys(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
