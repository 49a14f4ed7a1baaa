package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/favilink/favilink/internal/config"
)

// runInit executes the init command with the given extra arguments.
func runInit(t *testing.T, args ...string) error {
	t.Helper()

	cmd := NewInitCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a rules file that parses as rules YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".favilink")
		if err := runInit(t, "-o", path); err != nil {
			t.Fatalf("init failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("rules file missing: %v", err)
		}
		if !strings.Contains(string(data), "minCount") {
			t.Errorf("template content unexpected: %s", data)
		}

		// The commented template must stay valid YAML for config.Rules.
		var rules config.Rules
		if err := yaml.Unmarshal(data, &rules); err != nil {
			t.Errorf("template does not parse as rules: %v", err)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".favilink")
		if err := os.WriteFile(path, []byte("keep"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if err := runInit(t, "-o", path); err == nil {
			t.Error("expected error without --force")
		}
		data, _ := os.ReadFile(path)
		if string(data) != "keep" {
			t.Error("existing file was overwritten")
		}
	})

	t.Run("force overwrites an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".favilink")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if err := runInit(t, "-o", path, "-f"); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) == "old" {
			t.Error("file not overwritten with --force")
		}
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "rules.yaml")
		if err := runInit(t, "-o", path); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("rules file missing: %v", err)
		}
	})
}
