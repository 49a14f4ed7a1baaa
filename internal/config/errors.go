package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSiteDir is returned when no site directory is specified.
	ErrNoSiteDir = errors.New("no site directory specified: provide the rendered site root")

	// ErrNoBaseURL is returned when the canonical base URL is missing.
	// Without it, relative links cannot be resolved and the site's own
	// domain cannot be recognized.
	ErrNoBaseURL = errors.New("no base URL specified: use --base-url or the rules file")

	// ErrInvalidBaseURL is returned when the base URL cannot be parsed or
	// lacks a scheme or host.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute URL like https://example.com")

	// ErrInvalidMinCount is returned when the minimum count is negative.
	// Zero is valid and means every resolved favicon renders.
	ErrInvalidMinCount = errors.New("invalid minimum count: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when a probe or download timeout is not
	// positive. A zero timeout would make every network tier fail instantly.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")
)
