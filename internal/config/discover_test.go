package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig creates dir/.zcon/<name> with body.
func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	cfgDir := filepath.Join(dir, DefaultDir)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(cfgDir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDiscoverExplicit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "")

	got, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestDiscoverExplicitMissing(t *testing.T) {
	_, err := Discover("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Discover should fail when the explicit path does not exist")
	}
}

func TestDiscoverFromEnvVar(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.toml", "")
	t.Setenv(EnvConfig, path)

	got, err := Discover("")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestDiscoverEnvVarMissing(t *testing.T) {
	t.Setenv(EnvConfig, "/nonexistent/path/config.yaml")

	_, err := Discover("")
	if err == nil {
		t.Error("Discover should fail when ZCON_CONFIG points to nonexistent file")
	}
}

func TestDiscoverFromParentDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yml", "")

	childDir := filepath.Join(dir, "sub", "deep")
	if err := os.MkdirAll(childDir, 0o755); err != nil {
		t.Fatalf("MkdirAll child: %v", err)
	}
	t.Setenv(EnvConfig, "")
	t.Chdir(childDir)

	got, err := Discover("")
	if err != nil {
		t.Fatalf("Discover from parent: %v", err)
	}
	// Resolve symlinks for comparison (macOS /var -> /private/var).
	resolvedGot, _ := filepath.EvalSymlinks(got)
	resolvedWant, _ := filepath.EvalSymlinks(path)
	if resolvedGot != resolvedWant {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestDiscoverNoConfig(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Chdir(t.TempDir())

	_, err := Discover("")
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("Discover() error = %v, want ErrNoConfig", err)
	}
}

func TestOpenFallsBackToDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvURL, "")
	t.Setenv(EnvLogLevel, "")
	t.Chdir(t.TempDir())

	cfg, path, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if path != "" {
		t.Errorf("Open path = %q, want empty", path)
	}
	if cfg.Hub.URL != Default().Hub.URL {
		t.Errorf("Hub.URL = %q, want default", cfg.Hub.URL)
	}
}

func TestOpenInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "hub:\n  url: http://nope\n")
	t.Setenv(EnvURL, "")

	_, _, err := Open(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Open() error = %v, want ErrInvalidConfig", err)
	}
}
