package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"conftrail/archive"
)

// DBClient exposes typed queries over the conftrail schema. Mutations that
// belong to an importer batch take an explicit transaction; the importer
// opens one transaction for a whole synchronization cycle and commits once.
type DBClient struct {
	pool *pgxpool.Pool
}

func NewDBClient(pool *pgxpool.Pool) *DBClient {
	return &DBClient{pool: pool}
}

func (c *DBClient) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %w", err)
	}
	return tx, nil
}

func (c *DBClient) CommitTx(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}
	return nil
}

func (c *DBClient) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	// Rollback returns an error if the transaction is already closed.
	return tx.Rollback(ctx)
}

// UpsertDevice creates or refreshes an inventory record and returns its id
// along with the current-configuration pointer (nil for an empty archive).
func (c *DBClient) UpsertDevice(
	ctx context.Context,
	tx pgx.Tx,
	name string,
	ipAddress string,
	subtype string,
	longitude float64,
	latitude float64,
) (uuid.UUID, *archive.Timestamp, error) {
	var (
		deviceID pgtype.UUID
		current  pgtype.Timestamp
	)
	err := tx.QueryRow(ctx, upsertDeviceQuery,
		uuidToPgtype(uuid.New()), name, ipAddress, subtype, longitude, latitude,
	).Scan(&deviceID, &current)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("upsert device %q failed: %w", name, err)
	}
	return uuid.UUID(deviceID.Bytes), pgtypeToTimestamp(current), nil
}

// InsertSnapshot archives one configuration text. A timestamp collision is
// reported as archive.ErrDuplicateTimestamp without aborting the enclosing
// transaction.
func (c *DBClient) InsertSnapshot(
	ctx context.Context,
	tx pgx.Tx,
	deviceID uuid.UUID,
	ts archive.Timestamp,
	config string,
) error {
	tag, err := tx.Exec(ctx, insertSnapshotQuery,
		uuidToPgtype(deviceID), timestampToPgtype(ts), config)
	if err != nil {
		return fmt.Errorf("insert snapshot query failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("device %s at %s: %w", deviceID, ts, archive.ErrDuplicateTimestamp)
	}
	return nil
}

// SetCurrentSnapshot points the device at an archived snapshot. The snapshot
// row must already exist in the same transaction.
func (c *DBClient) SetCurrentSnapshot(
	ctx context.Context,
	tx pgx.Tx,
	deviceID uuid.UUID,
	ts archive.Timestamp,
) error {
	if _, err := tx.Exec(ctx, setCurrentSnapshotQuery, timestampToPgtype(ts), uuidToPgtype(deviceID)); err != nil {
		return fmt.Errorf("set current snapshot query failed: %w", err)
	}
	return nil
}

// ClearArchive empties the device's configuration history and resets the
// current pointer, within the caller's transaction.
func (c *DBClient) ClearArchive(ctx context.Context, tx pgx.Tx, deviceID uuid.UUID) error {
	// The pointer references the snapshots table, so it goes first.
	if _, err := tx.Exec(ctx, clearCurrentSnapshotQuery, uuidToPgtype(deviceID)); err != nil {
		return fmt.Errorf("clear current snapshot query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, deleteSnapshotsQuery, uuidToPgtype(deviceID)); err != nil {
		return fmt.Errorf("delete snapshots query failed: %w", err)
	}
	return nil
}

// ClearConfigurations is the single-device form of ClearArchive with its own
// transaction, for callers outside an importer batch.
func (c *DBClient) ClearConfigurations(ctx context.Context, deviceID uuid.UUID) (err error) {
	tx, err := c.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer c.RollbackTx(ctx, tx)

	if err = c.ClearArchive(ctx, tx, deviceID); err != nil {
		return err
	}
	return c.CommitTx(ctx, tx)
}

// Snapshot returns the configuration text archived at exactly ts. It
// satisfies confdiff.SnapshotSource.
func (c *DBClient) Snapshot(ctx context.Context, deviceID uuid.UUID, ts archive.Timestamp) (string, error) {
	var config string
	err := c.pool.QueryRow(ctx, getSnapshotQuery, uuidToPgtype(deviceID), timestampToPgtype(ts)).Scan(&config)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("device %s at %s: %w", deviceID, ts, archive.ErrSnapshotNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get snapshot query failed: %w", err)
	}
	return config, nil
}

// SnapshotTimestamps returns all archived timestamps for a device, ascending.
func (c *DBClient) SnapshotTimestamps(ctx context.Context, deviceID uuid.UUID) ([]archive.Timestamp, error) {
	rows, err := c.pool.Query(ctx, listSnapshotTimestampsQuery, uuidToPgtype(deviceID))
	if err != nil {
		return nil, fmt.Errorf("list snapshot timestamps query failed: %w", err)
	}
	defer rows.Close()

	var timestamps []archive.Timestamp
	for rows.Next() {
		var ts pgtype.Timestamp
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan snapshot timestamp failed: %w", err)
		}
		timestamps = append(timestamps, archive.FromTime(ts.Time))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshot timestamps failed: %w", err)
	}
	return timestamps, nil
}

// CurrentSnapshot returns the snapshot the device's current pointer
// references, or nil when the archive is empty.
func (c *DBClient) CurrentSnapshot(ctx context.Context, deviceID uuid.UUID) (*SnapshotRecord, error) {
	var (
		recordedAt pgtype.Timestamp
		config     string
	)
	err := c.pool.QueryRow(ctx, currentSnapshotQuery, uuidToPgtype(deviceID)).Scan(&recordedAt, &config)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current snapshot query failed: %w", err)
	}
	return &SnapshotRecord{
		DeviceID:   deviceID,
		RecordedAt: archive.FromTime(recordedAt.Time),
		Config:     config,
	}, nil
}

func (c *DBClient) ListDevices(ctx context.Context) ([]DeviceRecord, error) {
	rows, err := c.pool.Query(ctx, listDevicesQuery)
	if err != nil {
		return nil, fmt.Errorf("list devices query failed: %w", err)
	}
	defer rows.Close()

	var devices []DeviceRecord
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list devices failed: %w", err)
	}
	return devices, nil
}

// GetDevice returns the inventory record, or nil when the id is unknown.
func (c *DBClient) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceRecord, error) {
	device, err := scanDevice(c.pool.QueryRow(ctx, getDeviceQuery, uuidToPgtype(deviceID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return device, err
}

// GetDeviceByName returns the inventory record, or nil when the name is unknown.
func (c *DBClient) GetDeviceByName(ctx context.Context, name string) (*DeviceRecord, error) {
	device, err := scanDevice(c.pool.QueryRow(ctx, getDeviceByNameQuery, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return device, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*DeviceRecord, error) {
	var (
		deviceID  pgtype.UUID
		current   pgtype.Timestamp
		createdAt pgtype.Timestamp
		updatedAt pgtype.Timestamp
		device    DeviceRecord
	)
	err := row.Scan(&deviceID, &device.Name, &device.IPAddress, &device.Subtype,
		&device.Longitude, &device.Latitude, &current, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan device row failed: %w", err)
	}
	device.DeviceID = uuid.UUID(deviceID.Bytes)
	device.CurrentConfigAt = pgtypeToTimestamp(current)
	device.CreatedAt = createdAt.Time
	device.UpdatedAt = updatedAt.Time
	return &device, nil
}

// Helper functions for pgtype conversion

func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func timestampToPgtype(ts archive.Timestamp) pgtype.Timestamp {
	return pgtype.Timestamp{Time: ts.Time(), Valid: true}
}

func pgtypeToTimestamp(ts pgtype.Timestamp) *archive.Timestamp {
	if !ts.Valid {
		return nil
	}
	result := archive.FromTime(ts.Time)
	return &result
}
