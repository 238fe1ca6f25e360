package semver

import (
	masterminds "github.com/Masterminds/semver/v3"
)

// ValidRange reports whether rangeStr is a major-only specifier or a parseable constraint.
func ValidRange(rangeStr string) bool {
	if IsMajorOnly(rangeStr) {
		return true
	}
	_, err := masterminds.NewConstraint(rangeStr)
	return err == nil
}

// SatisfiesRange checks if a version string satisfies a range. An empty range matches
// any valid version.
func SatisfiesRange(version, rangeStr string) bool {
	sv, err := masterminds.NewVersion(version)
	if err != nil {
		return false
	}
	if rangeStr == "" {
		return true
	}

	if IsMajorOnly(rangeStr) {
		return int(sv.Major()) == ExtractMajorFromRange(rangeStr)
	}

	// An exact pin matches only that version, prereleases included.
	if IsExactVersion(rangeStr) {
		pinned, err := masterminds.NewVersion(rangeStr)
		return err == nil && sv.Equal(pinned)
	}

	constraint, err := masterminds.NewConstraint(rangeStr)
	if err != nil {
		return false
	}
	return constraint.Check(sv)
}
