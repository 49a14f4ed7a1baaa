// Package report renders favicon usage reports in multiple formats.
//
// The stats command assembles a model.UsageReport from the persisted
// tally, URL cache, and (when configured) the resolution log, then hands
// it to one of the writers here: SimpleWriter for terminals, and
// MarkdownWriter for docs and pull requests. MultiWriter fans a report
// out to several destinations at once.
package report
