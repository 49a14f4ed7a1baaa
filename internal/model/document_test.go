package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDocument(t *testing.T) {
	t.Parallel()

	t.Run("parses an HTML file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		if err := os.WriteFile(path, []byte("<p>hi</p>"), 0644); err != nil {
			t.Fatalf("failed to write page: %v", err)
		}

		doc, err := LoadDocument(path)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if doc.Root == nil {
			t.Fatal("root is nil")
		}
		if doc.Path != path {
			t.Errorf("path = %q", doc.Path)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadDocument(filepath.Join(t.TempDir(), "nope.html")); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestDocumentSave(t *testing.T) {
	t.Parallel()

	t.Run("round-trips content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		if err := os.WriteFile(path, []byte(`<p><a href="https://golang.org">go</a></p>`), 0644); err != nil {
			t.Fatalf("failed to write page: %v", err)
		}

		doc, err := LoadDocument(path)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if err := doc.Save(); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if !strings.Contains(string(data), `href="https://golang.org"`) {
			t.Errorf("saved document lost content: %s", data)
		}
	})
}

func TestDiscoverDocuments(t *testing.T) {
	t.Parallel()

	t.Run("finds html files recursively in stable order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"b.html", "a.html", "sub/c.HTML", "skip.css", "notes.txt"} {
			path := filepath.Join(dir, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
				t.Fatalf("failed to mkdir: %v", err)
			}
			if err := os.WriteFile(path, []byte("<p></p>"), 0644); err != nil {
				t.Fatalf("failed to write: %v", err)
			}
		}

		docs, err := DiscoverDocuments(dir)
		if err != nil {
			t.Fatalf("failed to discover: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("found %d documents, want 3: %v", len(docs), docs)
		}
		if filepath.Base(docs[0]) != "a.html" || filepath.Base(docs[1]) != "b.html" {
			t.Errorf("unexpected order: %v", docs)
		}
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := DiscoverDocuments(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("expected error, got nil")
		}
	})
}
