// Package testdb provisions throwaway postgres databases for container
// self-tests, over the same unix socket the containers mount.
package testdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"pkt.systems/pslog"
)

// maintenanceDB is the database used for CREATE/DROP statements.
const maintenanceDB = "postgres"

// DSN builds a unix-socket connection string against the maintenance
// database.
func DSN(socketDir string) string {
	return fmt.Sprintf("host=%s dbname=%s", socketDir, maintenanceDB)
}

// ValidateName rejects database names that cannot appear in a runbot test
// run. Postgres itself allows more, but keeping to this charset means the
// name is also safe as a container payload token.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("database name is empty")
	}
	for _, r := range name {
		ok := r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("database name %q contains %q", name, r)
		}
	}
	return nil
}

// Exists reports whether the named database is present.
func Exists(ctx context.Context, socketDir, name string) (bool, error) {
	conn, err := pgx.Connect(ctx, DSN(socketDir))
	if err != nil {
		return false, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)
	var found bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("query pg_database: %w", err)
	}
	return found, nil
}

// Ensure creates the named database if it does not already exist.
func Ensure(ctx context.Context, socketDir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	found, err := Exists(ctx, socketDir, name)
	if err != nil {
		return err
	}
	log := pslog.Ctx(ctx).With("db", name)
	if found {
		log.Debug("test database exists")
		return nil
	}
	conn, err := pgx.Connect(ctx, DSN(socketDir))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)
	// Identifiers cannot be bound as parameters; Sanitize quotes the name.
	_, err = conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	if err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	log.Info("test database created")
	return nil
}

// Drop removes the named database if it exists.
func Drop(ctx context.Context, socketDir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	conn, err := pgx.Connect(ctx, DSN(socketDir))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)
	stmt := "DROP DATABASE IF EXISTS " + pgx.Identifier{name}.Sanitize()
	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	pslog.Ctx(ctx).Info("test database dropped", "db", name)
	return nil
}
