package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// servicesDocument is the mapping shape: `{ services: [...] }`.
type servicesDocument struct {
	Services []Service `yaml:"services"`
}

var envPlaceholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// ParseServicesManifest accepts both manifest shapes spec.md §9 calls out: a
// root mapping with a `services` key, or a bare root sequence. It peeks the
// root node's kind via yaml.Node rather than attempting-and-falling-back,
// the discriminating approach spec.md §9 recommends. yaml.v3 is used
// instead of the teacher's jesseduffield/yaml fork specifically because it
// exposes yaml.Node for this peek.
func ParseServicesManifest(data []byte) ([]Service, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing services manifest: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]

	var services []Service
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&services); err != nil {
			return nil, fmt.Errorf("parsing services manifest (sequence form): %w", err)
		}
	case yaml.MappingNode:
		var wrapper servicesDocument
		if err := doc.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("parsing services manifest (mapping form): %w", err)
		}
		services = wrapper.Services
	default:
		return nil, fmt.Errorf("services manifest root must be a mapping or a sequence")
	}

	for i := range services {
		services[i] = expandServiceEnv(services[i])
		services[i] = defaultHealthcheckRetries(services[i])
	}

	return services, nil
}

// defaultHealthcheckRetries fills in the spec.md §4.6 default of 3 retries
// when a healthcheck_command is set but healthcheck_retries was omitted from
// the manifest. A plain int can't tell "omitted" from "explicitly 0", so this
// must run before Validate, which rejects Retries < 1 whenever a command is
// present — otherwise any manifest that leans on the documented default
// would fail to load.
func defaultHealthcheckRetries(s Service) Service {
	if s.Healthcheck.Command != "" && s.Healthcheck.Retries == 0 {
		s.Healthcheck.Retries = 3
	}
	return s
}

// expandServiceEnv resolves ${VAR} placeholders in every string field
// against os.Environ(), grounded on the teacher's
// utils.ResolvePlaceholderString template-resolution idiom. Applied before
// validation so port/name checks see resolved values.
func expandServiceEnv(s Service) Service {
	s.Name = expandEnv(s.Name)
	s.Image = expandEnv(s.Image)
	s.Type = expandEnv(s.Type)
	s.Pod = expandEnv(s.Pod)
	s.Ports = expandEnvSlice(s.Ports)
	s.Env = expandEnvSlice(s.Env)
	s.Volumes = expandEnvSlice(s.Volumes)
	s.Healthcheck.Command = expandEnv(s.Healthcheck.Command)
	s.Healthcheck.Interval = expandEnv(s.Healthcheck.Interval)
	s.Healthcheck.Timeout = expandEnv(s.Healthcheck.Timeout)
	return s
}

func expandEnvSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = expandEnv(v)
	}
	return out
}

func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		name := envPlaceholder.FindStringSubmatch(match)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})
}
