package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EnsureDatabase creates name through the admin connection unless it already
// exists. It reports whether the database was created.
func EnsureDatabase(ctx context.Context, adminConnString, name string) (bool, error) {
	conn, err := pgx.Connect(ctx, adminConnString)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToConnectAdmin, err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCheckDatabase, err)
	}
	if exists {
		return false, nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCreateDatabase, err)
	}
	return true, nil
}

// DropDatabase terminates every other session on name and drops it
func DropDatabase(ctx context.Context, adminConnString, name string) error {
	conn, err := pgx.Connect(ctx, adminConnString)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToConnectAdmin, err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, queryTerminateSessions, name); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToTerminate, err)
	}
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDropDatabase, err)
	}
	return nil
}
