package contact

import "errors"

var (
	// ErrFormat means the input stream could not be read as contact data at all.
	ErrFormat = errors.New("invalid contact file format")
	// ErrSourceUnavailable means the remote contact store could not be queried.
	ErrSourceUnavailable = errors.New("contact source unavailable")
	// ErrRowSkipped marks a single malformed CSV row. It is logged, never returned.
	ErrRowSkipped = errors.New("csv row skipped")
)
