package model

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/favilink/favilink/internal/fileutil"
)

// Document is a rendered HTML file together with its parsed node tree.
// The pipeline mutates the tree in place and writes it back; the upstream
// renderer that produced the file is not part of this system.
type Document struct {
	// Path is the location of the HTML file on disk.
	Path string

	// Root is the parsed document tree. html.Parse always produces a full
	// document (html/head/body) even for fragments, so Root is never nil
	// after a successful load.
	Root *html.Node
}

// LoadDocument reads and parses the HTML file at path.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Site files are user-provided by design
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	return &Document{Path: path, Root: root}, nil
}

// Save serializes the document tree and writes it back to its path.
// The write is atomic so a crash mid-save never leaves a truncated page.
func (d *Document) Save() error {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Root); err != nil {
		return fmt.Errorf("failed to render document %s: %w", d.Path, err)
	}

	if err := fileutil.WriteFileAtomic(d.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save document %s: %w", d.Path, err)
	}

	return nil
}

// DiscoverDocuments walks dir and returns the paths of every .html file,
// sorted lexically so sweeps process the corpus in a stable order.
func DiscoverDocuments(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".html") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk site directory: %w", err)
	}
	return paths, nil
}
