package database

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// execBatch opens a short-lived pool against dsn, runs the statements in
// order and closes again. DDL like CREATE DATABASE cannot run on the target
// database itself, hence the separate management connection.
func execBatch(ctx context.Context, dsn string, statements ...string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	return nil
}

// ResetDatabase drops and recreates the conftrail database and applies the
// embedded schema. Dev convenience until there is a real migration story.
func ResetDatabase(ctx context.Context, managementDsn string, conftrailDsn string) error {
	err := execBatch(ctx, managementDsn,
		"DROP DATABASE IF EXISTS conftrail",
		"CREATE DATABASE conftrail",
	)
	if err != nil {
		return fmt.Errorf("recreate database: %w", err)
	}

	if err := execBatch(ctx, conftrailDsn, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Printf("Recreated database 'conftrail' with a fresh schema")
	return nil
}
