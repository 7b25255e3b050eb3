// Package oracle renders Oracle user-management DDL.
package oracle

import (
	"fmt"
	"strings"

	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/ident"
)

const (
	// DialectName is the Oracle dialect identifier.
	DialectName = "oracle"

	// defaultGrant is the privilege granted when no grant list is supplied.
	defaultGrant = "create session"
)

// protectedAccounts are Oracle-maintained accounts that must never be
// dropped by this tool.
var protectedAccounts = []string{"sys", "system", "dbsnmp"}

// Planner renders Oracle CREATE USER, ALTER USER, DROP USER and GRANT
// statements. It is stateless and safe for concurrent use.
type Planner struct{}

func New() *Planner {
	return &Planner{}
}

func (p *Planner) Dialect() types.Dialect {
	return types.DialectOracle
}

func (p *Planner) ProtectedNames() []string {
	return protectedAccounts
}

// CreateUser renders the creation statement: authentication clause selected
// by mode (hash wins over plaintext), default tablespace with an unlimited
// quota on it, temporary tablespace, profile, and the lock clause when the
// desired state is locked.
func (p *Planner) CreateUser(d *types.DesiredState) (plan.Statement, error) {
	name, err := ident.Oracle(d.Name)
	if err != nil {
		return plan.Statement{}, err
	}

	authSQL, authRedacted, err := authClause(d)
	if err != nil {
		return plan.Statement{}, err
	}
	if authSQL == "" {
		return plan.Statement{}, &types.ConfigError{Reason: "schema_password or schema_password_hash is required to create a user with authentication_type=password"}
	}

	var sql, redacted strings.Builder
	for _, b := range []*strings.Builder{&sql, &redacted} {
		b.WriteString("CREATE USER ")
		b.WriteString(name)
	}
	sql.WriteString(" " + authSQL)
	redacted.WriteString(" " + authRedacted)

	tail, err := attributeClauses(d)
	if err != nil {
		return plan.Statement{}, err
	}
	sql.WriteString(tail)
	redacted.WriteString(tail)

	if d.WantsLock() {
		sql.WriteString(" ACCOUNT LOCK")
		redacted.WriteString(" ACCOUNT LOCK")
	}

	return plan.Statement{SQL: sql.String(), Redacted: redacted.String()}, nil
}

// AlterUser renders the alter statement and reports the attributes it
// touches. The lock/unlock clause is always appended: present and unlocked
// map to ACCOUNT UNLOCK, locked to ACCOUNT LOCK.
func (p *Planner) AlterUser(d *types.DesiredState) (plan.Statement, plan.IncludedAttrs, error) {
	name, err := ident.Oracle(d.Name)
	if err != nil {
		return plan.Statement{}, plan.IncludedAttrs{}, err
	}

	var sql, redacted strings.Builder
	for _, b := range []*strings.Builder{&sql, &redacted} {
		b.WriteString("ALTER USER ")
		b.WriteString(name)
	}

	attrs := plan.IncludedAttrs{
		DefaultTablespace: d.DefaultTablespace != "",
		TempTablespace:    d.TempTablespace != "",
		Profile:           true,
	}

	if plan.IncludeAuthClause(d) {
		authSQL, authRedacted, err := authClause(d)
		if err != nil {
			return plan.Statement{}, plan.IncludedAttrs{}, err
		}
		if authSQL != "" {
			sql.WriteString(" " + authSQL)
			redacted.WriteString(" " + authRedacted)
			attrs.AuthType = true
		}
	}

	tail, err := attributeClauses(d)
	if err != nil {
		return plan.Statement{}, plan.IncludedAttrs{}, err
	}
	sql.WriteString(tail)
	redacted.WriteString(tail)

	lock := " ACCOUNT UNLOCK"
	if d.WantsLock() {
		lock = " ACCOUNT LOCK"
	}
	sql.WriteString(lock)
	redacted.WriteString(lock)

	return plan.Statement{SQL: sql.String(), Redacted: redacted.String()}, attrs, nil
}

// DropUser renders a cascading drop, removing objects owned by the schema.
func (p *Planner) DropUser(name string) (plan.Statement, error) {
	quoted, err := ident.Oracle(name)
	if err != nil {
		return plan.Statement{}, err
	}
	sql := "DROP USER " + quoted + " CASCADE"
	return plan.Statement{SQL: sql, Redacted: sql}, nil
}

// GrantStatements renders one GRANT statement covering the whole list, or
// the session-connect default when the list is empty.
func (p *Planner) GrantStatements(name string, grants []string) ([]plan.Statement, error) {
	quoted, err := ident.Oracle(name)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		grants = []string{defaultGrant}
	}
	for _, g := range grants {
		if err := ident.Privilege(g); err != nil {
			return nil, err
		}
	}
	sql := "GRANT " + strings.Join(grants, ", ") + " TO " + quoted
	return []plan.Statement{{SQL: sql, Redacted: sql}}, nil
}

// authClause renders the IDENTIFIED clause for the desired authentication
// mode. Returns empty strings when password authentication is requested but
// no credential material is present.
func authClause(d *types.DesiredState) (sql, redacted string, err error) {
	switch d.AuthType {
	case types.AuthExternal:
		return "IDENTIFIED EXTERNALLY", "IDENTIFIED EXTERNALLY", nil
	case types.AuthGlobal:
		return "IDENTIFIED GLOBALLY", "IDENTIFIED GLOBALLY", nil
	}

	switch {
	case d.PasswordHash != "":
		if strings.ContainsAny(d.PasswordHash, "'") {
			return "", "", &types.ConfigError{Reason: "schema_password_hash must not contain quote characters"}
		}
		return "IDENTIFIED BY VALUES '" + d.PasswordHash + "'",
			"IDENTIFIED BY VALUES '" + plan.RedactedPassword + "'", nil
	case d.Password != "":
		if strings.ContainsAny(d.Password, `"`) {
			return "", "", &types.ConfigError{Reason: "schema_password must not contain double-quote characters"}
		}
		return `IDENTIFIED BY "` + d.Password + `"`,
			`IDENTIFIED BY "` + plan.RedactedPassword + `"`, nil
	}
	return "", "", nil
}

// attributeClauses renders the tablespace, temporary tablespace and profile
// clauses shared by the create and alter statements. The default tablespace
// clause carries an unlimited quota grant on the same tablespace.
func attributeClauses(d *types.DesiredState) (string, error) {
	var b strings.Builder

	if d.DefaultTablespace != "" {
		ts, err := ident.Oracle(d.DefaultTablespace)
		if err != nil {
			return "", fmt.Errorf("default tablespace: %w", err)
		}
		b.WriteString(" DEFAULT TABLESPACE " + ts + " QUOTA UNLIMITED ON " + ts)
	}
	if d.TempTablespace != "" {
		ts, err := ident.Oracle(d.TempTablespace)
		if err != nil {
			return "", fmt.Errorf("temporary tablespace: %w", err)
		}
		b.WriteString(" TEMPORARY TABLESPACE " + ts)
	}

	profile, err := ident.Oracle(d.EffectiveProfile())
	if err != nil {
		return "", fmt.Errorf("profile: %w", err)
	}
	b.WriteString(" PROFILE " + profile)

	return b.String(), nil
}
