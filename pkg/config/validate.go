package config

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var portSpecRegex = regexp.MustCompile(`^\d+:\d+(/\w+)?$`)

// Validate enforces the rules spec.md §4.3 lists after closure
// construction: name grammar, uniqueness, hub-name collision, port syntax,
// healthcheck retries, and duration parseability. Any failure aborts the
// load with a single descriptive ValidationError.
func Validate(hubName string, services []Service) error {
	names := make([]string, 0, len(services))
	for _, s := range services {
		if !ValidName(s.Name) {
			return validationErrorf("invalid service name %q: must match [a-zA-Z0-9][a-zA-Z0-9_.-]*", s.Name)
		}
		names = append(names, s.Name)
	}

	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return validationErrorf("duplicate service name(s) in closure: %s", strings.Join(dups, ", "))
	}

	if lo.Contains(names, hubName) {
		return validationErrorf("service name %q collides with the reserved hub name", hubName)
	}

	for _, s := range services {
		for _, p := range s.Ports {
			if !portSpecRegex.MatchString(p) {
				return validationErrorf("service %q: invalid port mapping %q, expected host:container[/proto]", s.Name, p)
			}
		}

		if s.Healthcheck.Command != "" {
			if s.Healthcheck.Retries < 1 {
				return validationErrorf("service %q: healthcheck_retries must be >= 1 when healthcheck_command is set", s.Name)
			}
			if _, err := ParseDuration(s.Healthcheck.Interval); err != nil {
				return validationErrorf("service %q: %v", s.Name, err)
			}
			if _, err := ParseDuration(s.Healthcheck.Timeout); err != nil {
				return validationErrorf("service %q: %v", s.Name, err)
			}
		} else if s.Healthcheck.Retries < 0 {
			return validationErrorf("service %q: healthcheck_retries must be >= 0", s.Name)
		}
	}

	return nil
}
