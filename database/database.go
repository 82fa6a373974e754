package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Database owns the pgx connection pool for the conftrail database.
type Database struct {
	dsn           string
	managementDsn string
	pool          *pgxpool.Pool
}

func NewDatabase(dsn string, managementDsn string) *Database {
	return &Database{
		dsn:           dsn,
		managementDsn: managementDsn,
	}
}

// Connect adds a connection pool for the configured DSN.
func (db *Database) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, db.dsn)
	if err != nil {
		return fmt.Errorf("unable to connect to %s: %w", db.dsn, err)
	}
	db.pool = pool
	return nil
}

func (db *Database) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *Database) Pool() *pgxpool.Pool {
	return db.pool
}
