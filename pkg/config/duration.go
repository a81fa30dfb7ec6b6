package config

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDuration accepts the manifest's duration syntax: an integer followed
// by one of s, m, h. "0s" is valid; negative values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	unit := s[len(s)-1:]
	numPart := s[:len(s)-1]
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid duration %q: negative durations are rejected", s)
	}
	var unitDur time.Duration
	switch unit {
	case "s":
		unitDur = time.Second
	case "m":
		unitDur = time.Minute
	case "h":
		unitDur = time.Hour
	default:
		return 0, fmt.Errorf("invalid duration %q: unit must be one of s, m, h", s)
	}
	return time.Duration(n) * unitDur, nil
}
