// Package semver parses agent references and checks agent versions against ranges.
package semver

import (
	"fmt"
	"regexp"
	"strings"
)

const logPrefix = "semver:parser"

// ParsedAgentRef holds the parsed components of an agent reference string.
type ParsedAgentRef struct {
	// Agent name or alias (e.g., "inventory_agent", "shipping")
	Name string
	// Version range if specified (e.g., "^1.2.0", "1", ""); empty string means any version
	Range string
	// Raw input string
	Raw string
}

var (
	agentNameRegex    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)
	majorOnlyRegex    = regexp.MustCompile(`^\d+$`)
	exactVersionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(-[\w.]+)?(\+[\w.]+)?$`)
)

// ParseAgentRef parses an agent reference string.
//
// Supported formats:
//   - inventory_agent           (any version)
//   - inventory_agent@1         (major only)
//   - inventory_agent@1.2.0     (exact version)
//   - inventory_agent@^1.2.0    (caret range)
//   - inventory_agent@~1.2.0    (tilde range)
//   - inventory_agent@>=1.0.0   (comparison range)
func ParseAgentRef(input string) (*ParsedAgentRef, error) {
	raw := strings.TrimSpace(input)

	name, rangeStr, hasAt := strings.Cut(raw, "@")
	if !ValidateAgentName(name) {
		return nil, fmt.Errorf("%s - invalid agent name: %q", logPrefix, raw)
	}
	if hasAt && rangeStr == "" {
		return nil, fmt.Errorf("%s - empty version range: %q", logPrefix, raw)
	}
	if rangeStr != "" && !ValidRange(rangeStr) {
		return nil, fmt.Errorf("%s - invalid version range %q in %q", logPrefix, rangeStr, raw)
	}

	return &ParsedAgentRef{
		Name:  name,
		Range: rangeStr,
		Raw:   raw,
	}, nil
}

// IsMajorOnly checks if a range is a major-only specifier (e.g., "3").
func IsMajorOnly(rangeStr string) bool {
	return majorOnlyRegex.MatchString(rangeStr)
}

// IsExactVersion checks if a range is an exact version (e.g., "3.2.1").
func IsExactVersion(rangeStr string) bool {
	return exactVersionRegex.MatchString(rangeStr)
}

// ExtractMajorFromRange extracts the major version if the range is major-only.
// Returns -1 if not a major-only range.
func ExtractMajorFromRange(rangeStr string) int {
	if !IsMajorOnly(rangeStr) {
		return -1
	}
	var major int
	fmt.Sscanf(rangeStr, "%d", &major)
	return major
}

// BuildAgentRef builds an agent reference string from a name and an optional range.
func BuildAgentRef(name, rangeStr string) string {
	if rangeStr != "" {
		return name + "@" + rangeStr
	}
	return name
}

// ValidateAgentName validates an agent name (letters, digits, dots, hyphens, underscores).
func ValidateAgentName(name string) bool {
	return agentNameRegex.MatchString(name)
}
