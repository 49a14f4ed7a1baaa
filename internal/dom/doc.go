// Package dom provides small helpers over golang.org/x/net/html node trees.
//
// The favicon pipeline receives already-rendered HTML documents and mutates
// them in place. This package collects the attribute, class, and traversal
// primitives the mutating components share, so that the favicon logic reads
// at the level of "find the last visible child" rather than raw pointer
// walks.
//
// Design decision: We build on golang.org/x/net/html rather than a CSS
// selector library because:
//  1. The pipeline only needs id, class, and tag lookups
//  2. x/net/html is already the parse/render layer for the documents
//  3. Mutation helpers need *html.Node anyway, so wrapping buys nothing
package dom
