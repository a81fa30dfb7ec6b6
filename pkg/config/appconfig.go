package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/OpenPeeDeeP/xdg"
	"github.com/imdario/mergo"
)

// ConfigDir resolves $XDG_CONFIG_HOME/devobox (or the platform equivalent),
// creating it if absent, grounded on the teacher's
// pkg/config/app_config.go findOrCreateConfigDir.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if err := os.MkdirAll(override, 0o755); err != nil {
			return "", err
		}
		return override, nil
	}

	dirs := xdg.New("devobox", "devobox")
	dir := dirs.ConfigHome()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// LoadLayer reads one devobox.toml file. A missing file is not an error; it
// simply contributes nothing to the merge.
func LoadLayer(path string) (*AppConfig, bool, error) {
	exists, err := fileExists(path)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	var cfg AppConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

func fileExists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MergeLayers overlays each later layer onto the earlier ones, field by
// field, with list-valued fields replaced rather than unioned (spec.md §9's
// resolved Open Question). Uses mergo.WithOverride, the same library the
// teacher uses for CommandObject defaulting, generalized here to whole
// AppConfig overlay.
func MergeLayers(layers ...*AppConfig) (AppConfig, Source, error) {
	merged := DefaultConfig()
	source := Source{Paths: "default", Build: "default", Container: "default", Dependencies: "default", Project: "default"}

	layerNames := []string{"global", "local"}
	for i, layer := range layers {
		if layer == nil {
			continue
		}
		name := "override"
		if i < len(layerNames) {
			name = layerNames[i]
		}
		if !isZeroPaths(layer.Paths) {
			source.Paths = name
		}
		if !isZeroBuild(layer.Build) {
			source.Build = name
		}
		if !isZeroContainer(layer.Container) {
			source.Container = name
		}
		if len(layer.Dependencies.IncludeProjects) > 0 {
			source.Dependencies = name
		}
		if layer.Project.StartupCommand != "" {
			source.Project = name
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return AppConfig{}, Source{}, err
		}
	}

	return merged, source, nil
}

func isZeroPaths(p Paths) bool    { return p.Containerfile == "" && p.ServicesYML == "" }
func isZeroBuild(b Build) bool    { return b.ImageName == "" }
func isZeroContainer(c Container) bool { return c.Name == "" && c.Workdir == "" }

// CodeRoot resolves $DEVOBOX_CODE_DIR or the default $HOME/code.
func CodeRoot() string {
	if dir := os.Getenv("DEVOBOX_CODE_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "code")
}
