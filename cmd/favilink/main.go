// Package main provides the entry point for the favilink CLI.
//
// Favilink decorates the hyperlinks of a statically rendered site with
// tiny favicon images, so readers can tell at a glance where a link
// leads. It counts favicon usage across the whole site, resolves icons
// through local files, a CDN, and a download service, and only renders
// icons frequent enough to aid recognition.
//
// Usage:
//
//	favilink build --base-url https://example.com ./public
//
// See --help for all available options.
package main

// main is the entry point for favilink.
func main() {
	Execute()
}
