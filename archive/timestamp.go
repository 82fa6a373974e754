package archive

import (
	"fmt"
	"time"
)

// Layout is the textual timestamp pattern shared with the synchronization
// importer: date, time and fractional seconds, e.g. "2024+03+01 09:30:00.000000".
const Layout = "2006+01+02 15:04:05.000000"

// Timestamp is the key under which a configuration snapshot is archived.
// It is an opaque, totally ordered value: callers compare and round-trip it,
// they do not derive calendar semantics from it.
type Timestamp struct {
	t time.Time
}

// ParseTimestamp parses a timestamp in the importer wire format. A string
// that does not match the pattern fails with ErrInvalidTimestamp rather than
// silently producing a zero timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return Timestamp{t: t}, nil
}

// FromTime builds a Timestamp from a time.Time, truncated to the microsecond
// precision the wire format carries.
func FromTime(t time.Time) Timestamp {
	return Timestamp{t: t.UTC().Truncate(time.Microsecond)}
}

func (ts Timestamp) String() string {
	return ts.t.Format(Layout)
}

// Time exposes the underlying instant for persistence.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

func (ts Timestamp) Equal(other Timestamp) bool {
	return ts.t.Equal(other.t)
}

func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero()
}
