package database

// SQL query constants for database operations.

const (
	// Returns the stored row so the importer can reuse the device id.
	upsertDeviceQuery = `
		INSERT INTO devices (device_id, name, ip_address, subtype, longitude, latitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name)
		DO UPDATE SET
			updated_at = NOW(),
			ip_address = EXCLUDED.ip_address,
			subtype = EXCLUDED.subtype,
			longitude = EXCLUDED.longitude,
			latitude = EXCLUDED.latitude
		RETURNING device_id, current_config_at`

	// DO NOTHING keeps a tolerated duplicate import from poisoning the
	// surrounding batch transaction; zero rows affected signals the collision.
	insertSnapshotQuery = `
		INSERT INTO configuration_snapshots (device_id, recorded_at, config)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id, recorded_at) DO NOTHING`

	setCurrentSnapshotQuery = `
		UPDATE devices
		SET current_config_at = $1, updated_at = NOW()
		WHERE device_id = $2`

	clearCurrentSnapshotQuery = `
		UPDATE devices
		SET current_config_at = NULL, updated_at = NOW()
		WHERE device_id = $1`

	deleteSnapshotsQuery = `
		DELETE FROM configuration_snapshots
		WHERE device_id = $1`

	getSnapshotQuery = `
		SELECT config
		FROM configuration_snapshots
		WHERE device_id = $1 AND recorded_at = $2`

	listSnapshotTimestampsQuery = `
		SELECT recorded_at
		FROM configuration_snapshots
		WHERE device_id = $1
		ORDER BY recorded_at ASC`

	currentSnapshotQuery = `
		SELECT s.recorded_at, s.config
		FROM devices d
		JOIN configuration_snapshots s
		  ON s.device_id = d.device_id AND s.recorded_at = d.current_config_at
		WHERE d.device_id = $1`

	listDevicesQuery = `
		SELECT device_id, name, ip_address, subtype, longitude, latitude, current_config_at, created_at, updated_at
		FROM devices
		ORDER BY name ASC`

	getDeviceQuery = `
		SELECT device_id, name, ip_address, subtype, longitude, latitude, current_config_at, created_at, updated_at
		FROM devices
		WHERE device_id = $1`

	getDeviceByNameQuery = `
		SELECT device_id, name, ip_address, subtype, longitude, latitude, current_config_at, created_at, updated_at
		FROM devices
		WHERE name = $1`
)
