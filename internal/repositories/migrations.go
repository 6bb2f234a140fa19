package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"leadcrm/internal/authz"
)

// SchemaStatements returns the DDL for the users and leads tables. The
// same statements can be pasted into the Supabase SQL editor.
func SchemaStatements(usersTable, leadsTable string) []string {
	users := pq.QuoteIdentifier(usersTable)
	leads := pq.QuoteIdentifier(leadsTable)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role_id INTEGER NOT NULL DEFAULT %d
)`, users, authz.DefaultRole),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	company TEXT,
	email TEXT NOT NULL,
	phone TEXT,
	source TEXT,
	status TEXT NOT NULL,
	notes TEXT,
	created DATE NOT NULL DEFAULT CURRENT_DATE,
	owner_email TEXT NOT NULL
)`, leads),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (owner_email)`,
			pq.QuoteIdentifier(leadsTable+"_owner_email_idx"), leads),
	}
}

// Migrate applies SchemaStatements in one transaction.
func Migrate(ctx context.Context, db *sqlx.DB, usersTable, leadsTable string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for _, stmt := range SchemaStatements(usersTable, leadsTable) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
