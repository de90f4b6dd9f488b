package release_sync

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(.+))?$`)

// PlatformVersion is a published platform BOM version and the day it appeared.
type PlatformVersion struct {
	Version string
	Date    time.Time
}

type versionComponents struct {
	numbers    [4]int
	classifier string
}

// Unparseable versions sort as 0.0.0.0 with the whole string as classifier.
func parseVersion(version string) versionComponents {
	match := versionPattern.FindStringSubmatch(version)
	if match == nil {
		return versionComponents{classifier: version}
	}
	var c versionComponents
	for i := range c.numbers {
		if match[i+1] != "" {
			c.numbers[i], _ = strconv.Atoi(match[i+1])
		}
	}
	c.classifier = match[5]
	return c
}

func isFinal(classifier string) bool {
	return classifier == "" || strings.EqualFold(classifier, "Final")
}

// CompareVersions orders by major, minor, micro and patch, then by classifier.
// A final release (no classifier or "Final") sorts after every other classifier
// of the same numbers; other classifiers compare case-insensitively.
func CompareVersions(a, b string) int {
	ca, cb := parseVersion(a), parseVersion(b)
	for i := range ca.numbers {
		if c := cmp.Compare(ca.numbers[i], cb.numbers[i]); c != 0 {
			return c
		}
	}

	aFinal, bFinal := isFinal(ca.classifier), isFinal(cb.classifier)
	switch {
	case aFinal && bFinal:
		return 0
	case aFinal:
		return 1
	case bFinal:
		return -1
	}
	return strings.Compare(strings.ToLower(ca.classifier), strings.ToLower(cb.classifier))
}

func (v PlatformVersion) Compare(other PlatformVersion) int {
	return CompareVersions(v.Version, other.Version)
}

func (v PlatformVersion) IsAtLeast(minVersion string) bool {
	return CompareVersions(v.Version, minVersion) >= 0
}

// IsPreRelease reports candidate releases (CR classifiers).
func (v PlatformVersion) IsPreRelease() bool {
	return strings.Contains(strings.ToUpper(v.Version), "CR")
}

// Title is the calendar title of the release.
func (v PlatformVersion) Title() string {
	if v.IsPreRelease() {
		return "Quarkus Platform " + v.Version + " Pre-Release"
	}
	return "Quarkus Platform " + v.Version + " Release"
}

// FileName maps 3.24.0.CR1 to quarkus-platform-3.24.0-cr1-release.yaml and
// 3.24.1.Final to quarkus-platform-3.24.1-release.yaml.
func (v PlatformVersion) FileName() string {
	normalized := strings.ToLower(v.Version)
	if trimmed, ok := strings.CutSuffix(normalized, ".final"); ok {
		normalized = trimmed
	} else {
		normalized = strings.ReplaceAll(normalized, ".cr", "-cr")
	}
	return "quarkus-platform-" + normalized + "-release.yaml"
}
