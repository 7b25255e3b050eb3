// Package plan converts a desired user state into the dialect-specific DDL
// statements that converge a live database toward it. Planners are pure:
// they render statements and report which attributes those statements touch,
// but never talk to a database.
package plan

import (
	"github.com/stokaro/orauser/dbuser/types"
)

// Statement is one renderable DDL statement. SQL is the executable text;
// Redacted is the same text with credential literals replaced, safe for logs
// and error messages.
type Statement struct {
	SQL      string
	Redacted string
}

// IncludedAttrs records which managed attributes an alter statement touches.
// The reconciler compares exactly these attributes against the observed
// state, in the fixed order: account status, authentication type, default
// tablespace, temporary tablespace, profile.
type IncludedAttrs struct {
	AuthType          bool
	DefaultTablespace bool
	TempTablespace    bool
	Profile           bool
}

// Planner renders user-management DDL for one dialect.
type Planner interface {
	Dialect() types.Dialect

	// CreateUser renders the creation statement for the desired state,
	// including authentication, tablespace, profile and lock clauses.
	CreateUser(d *types.DesiredState) (Statement, error)

	// AlterUser renders the alter statement for the desired state and
	// reports which attributes it includes. The lock/unlock clause is always
	// present; the credential clause follows the update-password policy.
	AlterUser(d *types.DesiredState) (Statement, IncludedAttrs, error)

	// DropUser renders the cascading drop statement.
	DropUser(name string) (Statement, error)

	// GrantStatements renders the grant statements for an already normalized
	// grant list. An empty list yields the dialect's session-connect default
	// (which may be no statement at all where login ability is part of the
	// user object itself).
	GrantStatements(name string, grants []string) ([]Statement, error)

	// ProtectedNames lists accounts that must never be dropped.
	ProtectedNames() []string
}

// IncludeAuthClause reports whether an alter statement must carry a
// credential clause for the desired state. External and global
// authentication always re-apply because there is no comparable secret. For
// password authentication the clause is included when the policy is
// "always", or whenever a precomputed hash is supplied: the on_create policy
// still renders the hash clause, it is just only executed on an attribute
// mismatch.
func IncludeAuthClause(d *types.DesiredState) bool {
	if d.AuthType != types.AuthPassword {
		return true
	}
	if d.PasswordHash != "" {
		return true
	}
	return d.UpdatePassword == types.UpdateAlways && d.Password != ""
}

// RedactedPassword is the placeholder substituted for credential literals in
// redacted statement text.
const RedactedPassword = "********"
