package database

import (
	"time"

	"github.com/google/uuid"

	"conftrail/archive"
)

// DeviceRecord represents a row in the devices table. The device itself is an
// opaque inventory record; conftrail only cares that it owns an archive.
type DeviceRecord struct {
	DeviceID        uuid.UUID
	Name            string
	IPAddress       string
	Subtype         string
	Longitude       float64
	Latitude        float64
	CurrentConfigAt *archive.Timestamp // nil when the archive is empty
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SnapshotRecord represents a row in the configuration_snapshots table: one
// immutable configuration text captured at one point in time.
type SnapshotRecord struct {
	DeviceID   uuid.UUID
	RecordedAt archive.Timestamp
	Config     string
}
