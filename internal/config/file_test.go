package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadFile(t *testing.T) {
	content := `csv: /data/result.csv
domain: example.org
subdomains: ["@", "cdn"]
max: 4
ttl: 120
api_url: "https://spaceship.local/api/v1/dns/records"
dry_run: true
`
	path := filepath.Join(t.TempDir(), "updater.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.CSVPath == nil || *f.CSVPath != "/data/result.csv" {
		t.Errorf("unexpected csv: %v", f.CSVPath)
	}
	if f.Domain == nil || *f.Domain != "example.org" {
		t.Errorf("unexpected domain: %v", f.Domain)
	}
	if !slices.Equal(f.Subdomains, []string{"@", "cdn"}) {
		t.Errorf("unexpected subdomains: %v", f.Subdomains)
	}
	if f.MaxIPCount == nil || *f.MaxIPCount != 4 {
		t.Errorf("unexpected max: %v", f.MaxIPCount)
	}
	if f.TTL == nil || *f.TTL != 120 {
		t.Errorf("unexpected ttl: %v", f.TTL)
	}
	if f.DryRun == nil || !*f.DryRun {
		t.Errorf("unexpected dry_run: %v", f.DryRun)
	}
	if f.APIKey != nil {
		t.Errorf("expected key to be unset, got %q", *f.APIKey)
	}
}

func TestLoadFile_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_SPACESHIP_KEY", "key-from-env")
	t.Setenv("TEST_SPACESHIP_SECRET", "secret-from-env")

	content := `key: "${TEST_SPACESHIP_KEY}"
secret: "${TEST_SPACESHIP_SECRET}"
domain: example.com
`
	path := filepath.Join(t.TempDir(), "updater.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *f.APIKey != "key-from-env" {
		t.Errorf("expected key 'key-from-env', got %q", *f.APIKey)
	}
	if *f.APISecret != "secret-from-env" {
		t.Errorf("expected secret 'secret-from-env', got %q", *f.APISecret)
	}
	if *f.Domain != "example.com" {
		t.Errorf("expected domain unchanged, got %q", *f.Domain)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "updater.yaml")
	if err := os.WriteFile(path, []byte("max: [not, a, number]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid file, got nil")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile("/nonexistent/path/updater.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestFilePath(t *testing.T) {
	flags := &Flags{ConfigPath: "flag.yaml"}

	if got := FilePath(envMap(nil), flags); got != "flag.yaml" {
		t.Errorf("expected flag path, got %q", got)
	}
	if got := FilePath(envMap(map[string]string{EnvConfigPath: "env.yaml"}), flags); got != "env.yaml" {
		t.Errorf("expected env path, got %q", got)
	}
	if got := FilePath(envMap(nil), nil); got != "" {
		t.Errorf("expected no path, got %q", got)
	}
}
