package pseudoterm

import (
	"os"
	"strings"
	"testing"
)

func TestOverlayEnvOverrides(t *testing.T) {
	t.Setenv("MX_TEST_OVERLAY", "old")

	env := overlayEnv(map[string]string{
		"MX_TEST_OVERLAY": "new",
		"MX_TEST_EXTRA":   "1",
	})

	var overlayCount int
	var sawExtra bool
	for _, e := range env {
		if strings.HasPrefix(e, "MX_TEST_OVERLAY=") {
			overlayCount++
			if e != "MX_TEST_OVERLAY=new" {
				t.Errorf("overlay entry = %q, want MX_TEST_OVERLAY=new", e)
			}
		}
		if e == "MX_TEST_EXTRA=1" {
			sawExtra = true
		}
	}
	if overlayCount != 1 {
		t.Errorf("MX_TEST_OVERLAY appears %d times, want 1", overlayCount)
	}
	if !sawExtra {
		t.Error("MX_TEST_EXTRA missing from environment")
	}
}

func TestOverlayEnvEmptyKeepsEnviron(t *testing.T) {
	if got, want := len(overlayEnv(nil)), len(os.Environ()); got != want {
		t.Fatalf("env length = %d, want %d", got, want)
	}
}

func TestResolveCommandDirExplicit(t *testing.T) {
	dir, err := resolveCommandDir("/some/dir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/some/dir" {
		t.Fatalf("dir = %q, want /some/dir", dir)
	}
}

func TestResolveCommandDirDefaultsToCwd(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Skip("no working directory")
	}
	dir, err := resolveCommandDir("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != wd {
		t.Fatalf("dir = %q, want %q", dir, wd)
	}
}
