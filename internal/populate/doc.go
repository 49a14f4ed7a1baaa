// Package populate fills favicon inventory placeholders in rendered HTML.
//
// A page opts in by carrying an element with the id or class
// "favicon-inventory". After the sweeps complete, the placeholder's
// contents are replaced with a table of every favicon that passed the
// inclusion gate, sorted by how often it appears across the site.
package populate
