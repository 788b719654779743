package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSemanticVersion is returned when a version string is not
// MAJOR.MINOR.PATCH with numeric components.
var ErrInvalidSemanticVersion = errors.New("invalid semantic version")

// SemanticVersion is a parsed MAJOR.MINOR.PATCH version identifier.
type SemanticVersion struct {
	Major int
	Minor int
	Patch int
}

// ParseSemanticVersion parses "MAJOR.MINOR.PATCH" with strictly numeric,
// non-negative components.
func ParseSemanticVersion(s string) (SemanticVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return SemanticVersion{}, fmt.Errorf("%w: %q", ErrInvalidSemanticVersion, s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || (len(part) > 1 && part[0] == '0') {
			return SemanticVersion{}, fmt.Errorf("%w: %q", ErrInvalidSemanticVersion, s)
		}
		nums[i] = n
	}

	return SemanticVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// IsValidSemanticVersion reports whether s parses as MAJOR.MINOR.PATCH.
func IsValidSemanticVersion(s string) bool {
	_, err := ParseSemanticVersion(s)
	return err == nil
}

func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 ordering v against o numerically per component.
func (v SemanticVersion) Compare(o SemanticVersion) int {
	if c := compareInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	return compareInt(v.Patch, o.Patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareSemanticVersions orders two version strings numerically, so "1.9.0"
// sorts before "1.10.0". Invalid versions order after valid ones; two invalid
// versions fall back to lexicographic comparison.
func CompareSemanticVersions(a, b string) int {
	va, errA := ParseSemanticVersion(a)
	vb, errB := ParseSemanticVersion(b)

	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortVersionStrings sorts version strings ascending with numeric component
// comparison.
func SortVersionStrings(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareSemanticVersions(versions[i], versions[j]) < 0
	})
}
