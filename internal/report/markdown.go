package report

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/favilink/favilink/internal/model"
)

// MarkdownWriter outputs usage reports in Markdown format, designed for
// dropping straight into a site's docs or a pull request comment.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the usage report in Markdown format.
func (w *MarkdownWriter) Write(report *model.UsageReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeUsage(md, report)
	w.writeTiers(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with site information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.UsageReport) {
	md.H1("Favicon Usage Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.SiteDir + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Distinct Favicons", strconv.Itoa(len(report.Entries))},
			{"Shown After Gating", strconv.Itoa(report.IncludedCount())},
			{"Total Decorated Links", strconv.Itoa(report.TotalLinks())},
		},
	})
	md.PlainText("")
}

// writeUsage writes the per-favicon usage table.
func (w *MarkdownWriter) writeUsage(md *markdown.Markdown, report *model.UsageReport) {
	md.H2("Usage")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		shown := "no"
		if e.Included {
			shown = "yes"
		}
		value := e.Value
		if value == "" {
			value = "(unresolved)"
		}
		rows = append(rows, []string{"`" + e.Key + "`", value, strconv.Itoa(e.Count), shown})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Favicon", "Resolved To", "Count", "Shown"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTiers writes the resolution tier breakdown, if a resolution log
// was available.
func (w *MarkdownWriter) writeTiers(md *markdown.Markdown, report *model.UsageReport) {
	if len(report.TierCounts) == 0 {
		return
	}

	md.H2("Resolution Tiers")
	md.PlainText("")

	tiers := make([]string, 0, len(report.TierCounts))
	for tier := range report.TierCounts {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	rows := make([][]string, 0, len(tiers))
	for _, tier := range tiers {
		rows = append(rows, []string{tierDisplayName(tier), strconv.Itoa(report.TierCounts[tier])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Hostnames"},
		Rows:   rows,
	})
	md.PlainText("")
}

// tierDisplayName turns a tier identifier like "cdn_svg" into a heading
// like "Cdn Svg".
func tierDisplayName(tier string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tier, "_", " "))
}
