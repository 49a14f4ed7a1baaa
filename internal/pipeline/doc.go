// Package pipeline orders the favicon build into strictly sequenced steps.
//
// # Architecture
//
// A build is four steps: count (tally favicon usage corpus-wide), insert
// (resolve, gate, and splice icons), populate (fill inventory containers),
// and flush (write the URL cache). Steps run in order with a hard barrier
// between them; documents inside the two sweep steps are processed on a
// bounded errgroup.
//
// Per-document failures are recorded on the build and do not stop the
// sweep. A step failure stops the pipeline unless it was constructed with
// WithContinueOnError.
package pipeline
