// Package store provides PostgreSQL CRUD for the policies table the
// dynamic PolicyProvider reads from. The write path lives here; the read
// path (full-table load + atomic snapshot swap) is policy.PostgresProvider.
package store

import "database/sql"

// Store provides access to the PostgreSQL database for policy CRUD.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
