// Package favicon implements the favicon resolution, caching, and
// frequency-gated insertion engine.
//
// # Architecture
//
// The package is a set of small components that the pipeline wires into two
// ordered sweeps over the document corpus:
//
//   - Classifier: maps an anchor element to a link kind (mail, same-page
//     anchor, RSS, external, or skip)
//   - Normalizer: maps a hostname to a canonical favicon key, handling
//     subdomain stripping, vendor aliasing, and public-suffix-aware root
//     extraction
//   - Counter: tallies, across every document, how often each favicon
//     would be used (sweep one), persisting the tally durably
//   - Resolver + URLCache: turns a hostname into a displayable favicon
//     path or URL, trying local files, CDN format variants, and a remote
//     download service, memoizing every outcome
//   - Gate: the blacklist/whitelist/threshold decision for whether a
//     resolved favicon actually renders
//   - Inserter: splices the icon element into a link's rendered text
//     (sweep two) without corrupting nested markup
//
// # Concurrency
//
// Documents are processed on parallel goroutines, so the shared Counter
// and URLCache are mutex-guarded, and the Resolver coalesces concurrent
// resolutions of the same key so each key is probed at most once per
// process.
//
// # Failure model
//
// Favicon failures are invisible to the reader: a link simply renders
// without an icon. Network errors become "not found", download validation
// failures clean up after themselves, and cache persistence failures are
// logged without aborting the sweep.
package favicon
