// Package mysql reads user state from the MySQL grant tables.
package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stokaro/orauser/dbuser/types"
)

// accountHost matches the host part the planner manages accounts under.
const accountHost = "%"

const (
	existsQuery = `SELECT COUNT(*) FROM mysql.user WHERE user = ? AND host = ?`

	stateQuery = `SELECT account_locked FROM mysql.user WHERE user = ? AND host = ?`

	hashQuery = `SELECT authentication_string FROM mysql.user WHERE user = ? AND host = ?`
)

// Reader reads user attributes from mysql.user. MySQL has no per-user
// tablespace or profile, so those observed fields stay empty.
type Reader struct {
	db *sql.DB
}

// NewReader creates a MySQL catalog reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Exists reports whether the managed 'name'@'%' account exists.
func (r *Reader) Exists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, existsQuery, name, accountHost).Scan(&count); err != nil {
		return false, &types.QueryError{Query: existsQuery, Err: err}
	}
	return count > 0, nil
}

// ReadState reads the managed attributes of the account.
func (r *Reader) ReadState(ctx context.Context, name string) (*types.ObservedState, error) {
	var locked string
	err := r.db.QueryRowContext(ctx, stateQuery, name, accountHost).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.ObservedState{Exists: false}, nil
	}
	if err != nil {
		return nil, &types.QueryError{Query: stateQuery, Err: err}
	}
	status := "open"
	if locked == "Y" {
		status = "locked"
	}
	return &types.ObservedState{
		Exists:        true,
		AccountStatus: status,
		AuthType:      string(types.AuthPassword),
	}, nil
}

// PasswordHash returns the stored authentication string for the account, or
// an empty string when the account is missing.
func (r *Reader) PasswordHash(ctx context.Context, name string) (string, error) {
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, hashQuery, name, accountHost).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &types.QueryError{Query: hashQuery, Err: err}
	}
	return hash.String, nil
}
