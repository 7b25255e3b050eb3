// Package postgres reads role state from the PostgreSQL catalog.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stokaro/orauser/dbuser/types"
)

const (
	existsQuery = `SELECT COUNT(*) FROM pg_roles WHERE rolname = lower($1)`

	stateQuery = `SELECT rolcanlogin FROM pg_roles WHERE rolname = lower($1)`

	// pg_authid is superuser-only; rolpassword holds the md5 or SCRAM
	// verifier, or NULL when none is set.
	hashQuery = `SELECT rolpassword FROM pg_authid WHERE rolname = lower($1)`
)

// Reader reads role attributes from pg_roles and pg_authid. PostgreSQL has
// no per-role tablespace or profile, so those observed fields stay empty and
// the account status is derived from the LOGIN attribute.
type Reader struct {
	db *sql.DB
}

// NewReader creates a PostgreSQL catalog reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Exists reports whether the named role exists, matching the lower-cased
// catalog form.
func (r *Reader) Exists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, existsQuery, name).Scan(&count); err != nil {
		return false, &types.QueryError{Query: existsQuery, Err: err}
	}
	return count > 0, nil
}

// ReadState reads the managed attributes of the named role.
func (r *Reader) ReadState(ctx context.Context, name string) (*types.ObservedState, error) {
	var canLogin bool
	err := r.db.QueryRowContext(ctx, stateQuery, name).Scan(&canLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.ObservedState{Exists: false}, nil
	}
	if err != nil {
		return nil, &types.QueryError{Query: stateQuery, Err: err}
	}
	status := "locked"
	if canLogin {
		status = "open"
	}
	return &types.ObservedState{
		Exists:        true,
		AccountStatus: status,
		AuthType:      string(types.AuthPassword),
	}, nil
}

// PasswordHash returns the stored verifier for the named role, or an empty
// string when the role is missing or has no password.
func (r *Reader) PasswordHash(ctx context.Context, name string) (string, error) {
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, hashQuery, name).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &types.QueryError{Query: hashQuery, Err: err}
	}
	return hash.String, nil
}
