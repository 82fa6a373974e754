package archive

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory device configuration archive: for each device, an
// ordered mapping from timestamp to full configuration text plus a pointer to
// the most recently ingested snapshot. It is the reference implementation of
// the archive semantics; the database package provides the persistent one.
//
// Writes take the write lock, reads the read lock. Callers are still expected
// to serialize importer runs (one batch in flight at a time); the lock only
// guarantees that individual operations never observe a partial write.
type Memory struct {
	mu      sync.RWMutex
	devices map[uuid.UUID]*history
}

type history struct {
	order   []Timestamp       // ascending
	texts   map[string]string // wire-format timestamp -> configuration text
	current Timestamp
	hasCur  bool
}

func NewMemory() *Memory {
	return &Memory{devices: make(map[uuid.UUID]*history)}
}

// Record archives a new snapshot and advances the current-configuration
// pointer to it. A timestamp collision fails with ErrDuplicateTimestamp and
// leaves the archive unchanged.
func (m *Memory) Record(deviceID uuid.UUID, ts Timestamp, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.devices[deviceID]
	if !ok {
		h = &history{texts: make(map[string]string)}
		m.devices[deviceID] = h
	}

	key := ts.String()
	if _, exists := h.texts[key]; exists {
		return fmt.Errorf("device %s at %s: %w", deviceID, key, ErrDuplicateTimestamp)
	}

	i := sort.Search(len(h.order), func(i int) bool { return ts.Before(h.order[i]) })
	h.order = append(h.order, Timestamp{})
	copy(h.order[i+1:], h.order[i:])
	h.order[i] = ts

	h.texts[key] = text
	h.current = ts
	h.hasCur = true
	return nil
}

// Get returns the configuration text archived at exactly ts.
func (m *Memory) Get(deviceID uuid.UUID, ts Timestamp) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.devices[deviceID]
	if !ok {
		return "", fmt.Errorf("device %s at %s: %w", deviceID, ts, ErrSnapshotNotFound)
	}
	text, ok := h.texts[ts.String()]
	if !ok {
		return "", fmt.Errorf("device %s at %s: %w", deviceID, ts, ErrSnapshotNotFound)
	}
	return text, nil
}

// Clear discards the device's whole history and its current pointer.
func (m *Memory) Clear(deviceID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.devices, deviceID)
}

// Timestamps returns all archived timestamps for a device, ascending.
func (m *Memory) Timestamps(deviceID uuid.UUID) []Timestamp {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.devices[deviceID]
	if !ok {
		return nil
	}
	out := make([]Timestamp, len(h.order))
	copy(out, h.order)
	return out
}

// Current returns the device's current configuration and its timestamp.
func (m *Memory) Current(deviceID uuid.UUID) (Timestamp, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.devices[deviceID]
	if !ok || !h.hasCur {
		return Timestamp{}, "", false
	}
	return h.current, h.texts[h.current.String()], true
}

// Snapshot satisfies the diff engine's snapshot source.
func (m *Memory) Snapshot(_ context.Context, deviceID uuid.UUID, ts Timestamp) (string, error) {
	return m.Get(deviceID, ts)
}
