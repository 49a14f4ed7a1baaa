package favicon

import "errors"

var (
	// ErrEmptyDownload is returned when the favicon service responds
	// successfully but delivers no bytes (zero content-length or an empty
	// body). The partial file, if any, has been removed by the time this
	// error is returned.
	ErrEmptyDownload = errors.New("favicon download was empty")

	// ErrNotFound is returned by resolution tiers that could not produce a
	// favicon. It is internal to the tier-by-tier fallback; Resolve never
	// surfaces it to callers.
	ErrNotFound = errors.New("favicon not found")
)
