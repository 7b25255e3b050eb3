// Package postgres renders PostgreSQL role-management DDL.
//
// PostgreSQL has no per-user tablespace or profile attributes and no
// external/global authentication clause, so those parts of the desired state
// are rejected up front. The lock/unlock lifecycle maps onto LOGIN/NOLOGIN.
package postgres

import (
	"strings"

	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/ident"
)

// DialectName is the PostgreSQL dialect identifier.
const DialectName = "postgres"

// protectedAccounts must never be dropped; the bootstrap superuser owns the
// catalog itself.
var protectedAccounts = []string{"postgres"}

// Planner renders PostgreSQL CREATE ROLE, ALTER ROLE, DROP ROLE and GRANT
// statements. It is stateless and safe for concurrent use.
type Planner struct{}

func New() *Planner {
	return &Planner{}
}

func (p *Planner) Dialect() types.Dialect {
	return types.DialectPostgres
}

func (p *Planner) ProtectedNames() []string {
	return protectedAccounts
}

// CreateUser renders CREATE ROLE with LOGIN (or NOLOGIN for a locked target
// state) and an encrypted password clause. A precomputed verifier is passed
// through the same PASSWORD clause: PostgreSQL accepts md5/SCRAM verifiers
// verbatim there.
func (p *Planner) CreateUser(d *types.DesiredState) (plan.Statement, error) {
	if err := checkCapabilities(d); err != nil {
		return plan.Statement{}, err
	}
	name, err := ident.Postgres(d.Name)
	if err != nil {
		return plan.Statement{}, err
	}
	credSQL, credRedacted, err := passwordClause(d)
	if err != nil {
		return plan.Statement{}, err
	}
	if credSQL == "" {
		return plan.Statement{}, &types.ConfigError{Reason: "schema_password or schema_password_hash is required to create a role"}
	}

	login := " LOGIN"
	if d.WantsLock() {
		login = " NOLOGIN"
	}
	return plan.Statement{
		SQL:      "CREATE ROLE " + name + login + credSQL,
		Redacted: "CREATE ROLE " + name + login + credRedacted,
	}, nil
}

// AlterUser renders ALTER ROLE with the LOGIN/NOLOGIN clause always present
// and the password clause per the update-password policy.
func (p *Planner) AlterUser(d *types.DesiredState) (plan.Statement, plan.IncludedAttrs, error) {
	if err := checkCapabilities(d); err != nil {
		return plan.Statement{}, plan.IncludedAttrs{}, err
	}
	name, err := ident.Postgres(d.Name)
	if err != nil {
		return plan.Statement{}, plan.IncludedAttrs{}, err
	}

	login := " LOGIN"
	if d.WantsLock() {
		login = " NOLOGIN"
	}
	sql := "ALTER ROLE " + name + " WITH" + login
	redacted := sql

	var attrs plan.IncludedAttrs
	if plan.IncludeAuthClause(d) {
		credSQL, credRedacted, err := passwordClause(d)
		if err != nil {
			return plan.Statement{}, plan.IncludedAttrs{}, err
		}
		if credSQL != "" {
			sql += credSQL
			redacted += credRedacted
			attrs.AuthType = true
		}
	}

	return plan.Statement{SQL: sql, Redacted: redacted}, attrs, nil
}

// DropUser renders DROP ROLE. PostgreSQL refuses to drop a role that still
// owns objects; transferring ownership is out of scope here.
func (p *Planner) DropUser(name string) (plan.Statement, error) {
	quoted, err := ident.Postgres(name)
	if err != nil {
		return plan.Statement{}, err
	}
	sql := "DROP ROLE " + quoted
	return plan.Statement{SQL: sql, Redacted: sql}, nil
}

// GrantStatements renders one GRANT per entry. An empty list yields no
// statements: session access is the LOGIN attribute of the role itself, so
// there is no separate connect privilege to grant.
func (p *Planner) GrantStatements(name string, grants []string) ([]plan.Statement, error) {
	quoted, err := ident.Postgres(name)
	if err != nil {
		return nil, err
	}
	stmts := make([]plan.Statement, 0, len(grants))
	for _, g := range grants {
		if err := ident.Privilege(g); err != nil {
			return nil, err
		}
		sql := "GRANT " + g + " TO " + quoted
		stmts = append(stmts, plan.Statement{SQL: sql, Redacted: sql})
	}
	return stmts, nil
}

func checkCapabilities(d *types.DesiredState) error {
	if d.AuthType != types.AuthPassword {
		return &types.ConfigError{Reason: "authentication_type=" + string(d.AuthType) + " is not supported on postgres"}
	}
	if d.DefaultTablespace != "" || d.TempTablespace != "" {
		return &types.ConfigError{Reason: "tablespace attributes are not supported on postgres"}
	}
	if d.Profile != "" && !strings.EqualFold(d.Profile, "default") {
		return &types.ConfigError{Reason: "profiles are not supported on postgres"}
	}
	return nil
}

func passwordClause(d *types.DesiredState) (sql, redacted string, err error) {
	secret := d.Password
	if d.PasswordHash != "" {
		secret = d.PasswordHash
	}
	if secret == "" {
		return "", "", nil
	}
	if strings.ContainsAny(secret, "'") {
		return "", "", &types.ConfigError{Reason: "credential material must not contain quote characters"}
	}
	return " ENCRYPTED PASSWORD '" + secret + "'",
		" ENCRYPTED PASSWORD '" + plan.RedactedPassword + "'", nil
}
