package config

import (
	"os"
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	originalXDG := os.Getenv("XDG_DATA_HOME")
	t.Cleanup(func() {
		if originalXDG != "" {
			os.Setenv("XDG_DATA_HOME", originalXDG)
		} else {
			os.Unsetenv("XDG_DATA_HOME")
		}
	})

	os.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/redscout" {
		t.Errorf("expected /custom/data/redscout, got %s", got)
	}
}

func TestDefaultDataDirConsistency(t *testing.T) {
	if DefaultDataDir() != DefaultDataDir() {
		t.Error("DefaultDataDir should be consistent across calls")
	}
}

func TestIsDir(t *testing.T) {
	if !isDir(".") {
		t.Error("current directory should be a dir")
	}
	if isDir("/non/existent/path/that/does/not/exist") {
		t.Error("missing path should not be a dir")
	}
}
