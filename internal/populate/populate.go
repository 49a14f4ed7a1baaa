package populate

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/favilink/favilink/internal/dom"
	"github.com/favilink/favilink/internal/favicon"
	"github.com/favilink/favilink/internal/model"
)

// containerName is the id and class token that marks an inventory
// placeholder in the rendered output.
const containerName = "favicon-inventory"

// Prober upgrades raster cache entries to vector variants when the CDN
// has them. *favicon.Resolver implements it.
type Prober interface {
	CheckCDNSVG(ctx context.Context, pngKey string) (string, bool)
}

// Populator fills favicon inventory placeholders with a table of every
// favicon that passed the gate, sorted by descending usage count. Runs
// after both sweeps, so the tally and cache are complete.
type Populator struct {
	counter *favicon.Counter
	cache   *favicon.URLCache
	gate    *favicon.Gate
	prober  Prober
	logger  *slog.Logger
}

// Option configures a Populator.
type Option func(*Populator)

// WithLogger sets a custom logger for the populator.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Populator) {
		p.logger = logger
	}
}

// WithProber enables CDN SVG upgrade probes for PNG-only entries.
func WithProber(prober Prober) Option {
	return func(p *Populator) {
		p.prober = prober
	}
}

// New creates a Populator over the given tally, cache, and gate.
func New(counter *favicon.Counter, cache *favicon.URLCache, gate *favicon.Gate, opts ...Option) *Populator {
	p := &Populator{
		counter: counter,
		cache:   cache,
		gate:    gate,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Row is one line of the inventory table.
type Row struct {
	// Key is the extension-stripped favicon key.
	Key string

	// Src is the displayable icon path or URL.
	Src string

	// Count is the corpus-wide usage count.
	Count int
}

// Rows returns the gate-passing inventory sorted by descending count.
// PNG-only entries are re-probed for a CDN SVG variant first, so the
// inventory (and the cache behind it) prefers vectors when available.
func (p *Populator) Rows(ctx context.Context) []Row {
	rows := make([]Row, 0, p.counter.Len())
	for _, e := range p.counter.Snapshot() {
		src, ok := p.displaySrc(ctx, e.Key)
		if !ok {
			continue
		}
		if !p.gate.Include(e.Key+".png", src) {
			continue
		}
		rows = append(rows, Row{Key: e.Key, Src: src, Count: e.Count})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// displaySrc finds the displayable source for a tally key. Sentinel keys
// map straight back to their SVG; everything else comes from the cache.
func (p *Populator) displaySrc(ctx context.Context, key string) (string, bool) {
	if favicon.IsSentinel(key + ".svg") {
		return key + ".svg", true
	}

	pngKey := key + ".png"
	value, ok := p.cache.Get(pngKey)
	if !ok || value == favicon.FailedValue {
		return "", false
	}

	// A raster-only entry may have grown a vector variant on the CDN since
	// it was cached.
	if strings.HasSuffix(value, ".png") && p.prober != nil {
		if svg, ok := p.prober.CheckCDNSVG(ctx, pngKey); ok {
			return svg, true
		}
	}
	return value, true
}

// Populate rewrites every inventory placeholder in the build's documents.
// Documents without a placeholder are untouched; a failing document is
// logged and skipped rather than aborting the rest.
func (p *Populator) Populate(ctx context.Context, build *model.Build) error {
	rows := p.Rows(ctx)

	for _, path := range build.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.populateFile(path, rows); err != nil {
			p.logger.Warn("failed to populate inventory", "path", path, "error", err)
			build.AddFailure(path + ": " + err.Error())
		}
	}
	return nil
}

// populateFile fills the placeholder in one document, if it has one.
func (p *Populator) populateFile(path string, rows []Row) error {
	doc, err := model.LoadDocument(path)
	if err != nil {
		return err
	}

	containers := findContainers(doc.Root)
	if len(containers) == 0 {
		return nil
	}

	for _, c := range containers {
		dom.RemoveChildren(c)
		c.AppendChild(buildTable(rows))
	}
	return doc.Save()
}

// findContainers locates placeholders by id first, then by class.
func findContainers(root *html.Node) []*html.Node {
	if n := dom.FindByID(root, containerName); n != nil {
		return []*html.Node{n}
	}
	return dom.FindByClass(root, containerName)
}

// buildTable renders the inventory rows as a table element.
func buildTable(rows []Row) *html.Node {
	table := element("table", "favicon-inventory-table")
	for _, row := range rows {
		tr := element("tr", "")

		iconCell := element("td", "")
		iconCell.AppendChild(favicon.NewIconNode(row.Src))
		tr.AppendChild(iconCell)

		keyCell := element("td", "")
		keyCell.AppendChild(text(row.Key))
		tr.AppendChild(keyCell)

		countCell := element("td", "")
		countCell.AppendChild(text(strconv.Itoa(row.Count)))
		tr.AppendChild(countCell)

		table.AppendChild(tr)
	}
	return table
}

func element(tag, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
