// Package oracle reads user state from the Oracle data dictionary.
package oracle

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/stokaro/orauser/dbuser/types"
)

const (
	existsQuery = `SELECT COUNT(*) FROM dba_users WHERE username = UPPER(:1)`

	stateQuery = `SELECT account_status, authentication_type, default_tablespace,
       temporary_tablespace, profile
FROM dba_users WHERE username = UPPER(:1)`

	// Oracle stores only the verifier, never the plaintext. spare4 carries
	// the current-format verifier on 11g and later.
	hashQuery = `SELECT spare4 FROM sys.user$ WHERE name = UPPER(:1)`
)

// Reader reads user attributes from dba_users and sys.user$. Reading the
// password verifier requires a session with SELECT access on sys.user$
// (typically SYSDBA).
type Reader struct {
	db *sql.DB
}

// NewReader creates an Oracle catalog reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Exists reports whether the named user exists, matching case-insensitively
// against the uppercased catalog form.
func (r *Reader) Exists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, existsQuery, name).Scan(&count); err != nil {
		return false, &types.QueryError{Query: existsQuery, Err: err}
	}
	return count > 0, nil
}

// ReadState reads the managed attributes of the named user, lower-cased for
// comparison against desired values.
func (r *Reader) ReadState(ctx context.Context, name string) (*types.ObservedState, error) {
	var status, auth, defaultTS, tempTS, profile sql.NullString
	err := r.db.QueryRowContext(ctx, stateQuery, name).
		Scan(&status, &auth, &defaultTS, &tempTS, &profile)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.ObservedState{Exists: false}, nil
	}
	if err != nil {
		return nil, &types.QueryError{Query: stateQuery, Err: err}
	}
	return &types.ObservedState{
		Exists:            true,
		AccountStatus:     strings.ToLower(status.String),
		AuthType:          strings.ToLower(auth.String),
		DefaultTablespace: strings.ToLower(defaultTS.String),
		TempTablespace:    strings.ToLower(tempTS.String),
		Profile:           strings.ToLower(profile.String),
	}, nil
}

// PasswordHash returns the stored verifier for the named user, or an empty
// string when the user is missing or authenticates without a password.
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
