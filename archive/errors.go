package archive

import "errors"

var (
	// ErrDuplicateTimestamp is returned when a snapshot already exists for a
	// device at the given timestamp. The archive never overwrites history.
	ErrDuplicateTimestamp = errors.New("duplicate configuration timestamp")

	// ErrSnapshotNotFound is returned when no snapshot exists at the exact
	// timestamp requested. There is no nearest-match fallback.
	ErrSnapshotNotFound = errors.New("configuration snapshot not found")

	// ErrInvalidTimestamp is returned when a timestamp string does not match
	// the wire format agreed with the importer.
	ErrInvalidTimestamp = errors.New("invalid timestamp format")
)
