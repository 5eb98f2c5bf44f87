package version

import (
	"strings"
	"testing"
)

func TestDisplayVersionDev(t *testing.T) {
	oldRef, oldRelease := GitRef, ReleaseBuild
	defer func() { GitRef, ReleaseBuild = oldRef, oldRelease }()

	GitRef = "abc1234"
	ReleaseBuild = "false"

	if got := DisplayVersion(); got != "v"+Version+"-abc1234" {
		t.Fatalf("dev version = %q, want v%s-abc1234", got, Version)
	}
}

func TestDisplayVersionRelease(t *testing.T) {
	oldRelease := ReleaseBuild
	defer func() { ReleaseBuild = oldRelease }()

	ReleaseBuild = "true"
	if got := DisplayVersion(); got != "v"+Version {
		t.Fatalf("release version = %q, want v%s", got, Version)
	}
}

func TestRefFallsBackWhenUninjected(t *testing.T) {
	oldRef := GitRef
	defer func() { GitRef = oldRef }()

	GitRef = "  "
	// Either the embedded VCS revision or the "unknown" sentinel; never empty.
	got := ref()
	if got == "" {
		t.Fatal("ref must never be empty")
	}
	if strings.Contains(got, " ") {
		t.Fatalf("ref %q contains whitespace", got)
	}
}

func TestRefPrefersInjectedValue(t *testing.T) {
	oldRef := GitRef
	defer func() { GitRef = oldRef }()

	GitRef = "deadbee"
	if got := ref(); got != "deadbee" {
		t.Fatalf("ref = %q, want injected deadbee", got)
	}
}
