package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSiteFile writes a file under the site directory, creating parents.
func writeSiteFile(t *testing.T, siteDir, rel, content string) string {
	t.Helper()

	path := filepath.Join(siteDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	t.Run("decorates a site end to end without a network", func(t *testing.T) {
		t.Parallel()

		siteDir := t.TempDir()
		page := writeSiteFile(t, siteDir, "index.html",
			`<p><a href="https://golang.org">go</a> <a href="https://golang.org/doc">docs</a></p>`)
		writeSiteFile(t, siteDir, "static/images/external-favicons/golang_org.svg", "<svg/>")

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{
			"build",
			"--base-url", "https://mysite.test",
			"--min-count", "2",
			siteDir,
		})
		if err := root.Execute(); err != nil {
			t.Fatalf("build failed: %v", err)
		}

		data, err := os.ReadFile(page)
		if err != nil {
			t.Fatalf("failed to read page: %v", err)
		}
		if strings.Count(string(data), "golang_org.svg") != 2 {
			t.Errorf("expected two icons, got: %s", data)
		}

		// The caches must exist for incremental rebuilds and stats.
		for _, name := range []string{".favicon-counts", ".favicon-urls"} {
			if _, err := os.Stat(filepath.Join(siteDir, name)); err != nil {
				t.Errorf("%s missing after build: %v", name, err)
			}
		}
	})

	t.Run("missing base URL is a configuration error", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"build", t.TempDir()})
		if err := root.Execute(); err == nil {
			t.Error("expected error without --base-url")
		}
	})

	t.Run("explicit rules file must exist", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{
			"build",
			"--base-url", "https://mysite.test",
			"--rules", filepath.Join(t.TempDir(), "nope.yaml"),
			t.TempDir(),
		})
		if err := root.Execute(); err == nil {
			t.Error("expected error for missing rules file")
		}
	})
}

func TestStatsCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports the persisted tally", func(t *testing.T) {
		t.Parallel()

		siteDir := t.TempDir()
		writeSiteFile(t, siteDir, ".favicon-counts",
			"8\t/static/images/external-favicons/golang_org\n")
		writeSiteFile(t, siteDir, ".favicon-urls",
			"/static/images/external-favicons/golang_org.png,https://cdn/golang_org.svg\n")

		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"stats", "--min-count", "2", siteDir})
		if err := root.Execute(); err != nil {
			t.Fatalf("stats failed: %v", err)
		}

		if !strings.Contains(out.String(), "golang_org") {
			t.Errorf("tally entry missing: %s", out.String())
		}
	})

	t.Run("markdown output renders a report document", func(t *testing.T) {
		t.Parallel()

		siteDir := t.TempDir()
		writeSiteFile(t, siteDir, ".favicon-counts",
			"3\t/static/images/external-favicons/golang_org\n")
		writeSiteFile(t, siteDir, ".favicon-urls",
			"/static/images/external-favicons/golang_org.png,/static/images/external-favicons/golang_org.png\n")

		outPath := filepath.Join(t.TempDir(), "report.md")
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"stats", "--markdown", "-o", outPath, siteDir})
		if err := root.Execute(); err != nil {
			t.Fatalf("stats failed: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("report file missing: %v", err)
		}
		if !strings.Contains(string(data), "# Favicon Usage Report") {
			t.Errorf("markdown header missing: %s", data)
		}
	})
}
