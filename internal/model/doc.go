// Package model defines the data structures shared across the favicon
// pipeline: documents, build state, and resolution records.
//
// Design decision: Shared types live in their own package rather than in
// the packages that produce them because the pipeline, resolver, database,
// and report packages all exchange these values. Keeping them here avoids
// import cycles and keeps each component package focused on behavior.
package model
