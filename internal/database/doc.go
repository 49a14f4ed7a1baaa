// Package database provides optional SQLite persistence for favicon
// resolution outcomes.
//
// The resolution log is strictly supplementary: the build runs entirely
// off the flat-file tally and URL cache, and the log only feeds the stats
// command. It records one row per hostname with the tier that decided its
// resolution, the resolved value, and the time the decision took.
package database
