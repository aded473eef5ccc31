package types //nolint:revive // types is a valid package name

import (
	"regexp"
	"testing"
)

func TestVersion_Format(t *testing.T) {
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q is not a valid semver", Version)
	}
}

func TestFormatVersion_MatchesVersion(t *testing.T) {
	if FormatVersion != Version {
		t.Errorf("FormatVersion %q != Version %q (lockstep versioning violated)", FormatVersion, Version)
	}
}
