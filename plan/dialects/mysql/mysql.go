// Package mysql renders MySQL/MariaDB user-management DDL.
//
// Tablespace and profile attributes and external/global authentication have
// no MySQL equivalent and are rejected up front. Accounts are managed for
// the wildcard host ('name'@'%').
package mysql

import (
	"strings"

	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/ident"
)

// DialectName is the MySQL dialect identifier.
const DialectName = "mysql"

// accountHost is the host part of every managed account.
const accountHost = "%"

var protectedAccounts = []string{"root", "mysql.sys", "mysql.session", "mysql.infoschema"}

// Planner renders MySQL CREATE USER, ALTER USER, DROP USER and GRANT
// statements. It is stateless and safe for concurrent use.
type Planner struct{}

func New() *Planner {
	return &Planner{}
}

func (p *Planner) Dialect() types.Dialect {
	return types.DialectMySQL
}

func (p *Planner) ProtectedNames() []string {
	return protectedAccounts
}

// CreateUser renders CREATE USER with IDENTIFIED BY for a plaintext password
// or IDENTIFIED WITH ... AS for a precomputed verifier, plus ACCOUNT LOCK
// when the desired state is locked.
func (p *Planner) CreateUser(d *types.DesiredState) (plan.Statement, error) {
	if err := checkCapabilities(d); err != nil {
		return plan.Statement{}, err
	}
	account, err := accountLiteral(d.Name)
	if err != nil {
		return plan.Statement{}, err
	}
	credSQL, credRedacted, err := authClause(d)
	if err != nil {
		return plan.Statement{}, err
	}
	if credSQL == "" {
		return plan.Statement{}, &types.ConfigError{Reason: "schema_password or schema_password_hash is required to create a user"}
	}

	sql := "CREATE USER " + account + credSQL
	redacted := "CREATE USER " + account + credRedacted
	if d.WantsLock() {
		sql += " ACCOUNT LOCK"
		redacted += " ACCOUNT LOCK"
	}
	return plan.Statement{SQL: sql, Redacted: redacted}, nil
}

// AlterUser renders ALTER USER with the ACCOUNT LOCK/UNLOCK clause always
// present and the credential clause per the update-password policy.
func (p *Planner) AlterUser(d *types.DesiredState) (plan.Statement, plan.IncludedAttrs, error) {
	if err := checkCapabilities(d); err != nil {
		return plan.Statement{}, plan.IncludedAttrs{}, err
	}
	account, err := accountLiteral(d.Name)
	if err != nil {
		return plan.Statement{}, plan.IncludedAttrs{}, err
	}

	sql := "ALTER USER " + account
	redacted := sql

	var attrs plan.IncludedAttrs
	if plan.IncludeAuthClause(d) {
		credSQL, credRedacted, err := authClause(d)
		if err != nil {
			return plan.Statement{}, plan.IncludedAttrs{}, err
		}
		if credSQL != "" {
			sql += credSQL
			redacted += credRedacted
			attrs.AuthType = true
		}
	}

	lock := " ACCOUNT UNLOCK"
	if d.WantsLock() {
		lock = " ACCOUNT LOCK"
	}
	return plan.Statement{SQL: sql + lock, Redacted: redacted + lock}, attrs, nil
}

// DropUser renders DROP USER; MySQL drops the account's privileges with it.
func (p *Planner) DropUser(name string) (plan.Statement, error) {
	account, err := accountLiteral(name)
	if err != nil {
		return plan.Statement{}, err
	}
	sql := "DROP USER " + account
	return plan.Statement{SQL: sql, Redacted: sql}, nil
}

// GrantStatements renders one GRANT statement covering the whole list, or
// the USAGE default (the MySQL session-connect equivalent) when empty.
func (p *Planner) GrantStatements(name string, grants []string) ([]plan.Statement, error) {
	account, err := accountLiteral(name)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		sql := "GRANT USAGE ON *.* TO " + account
		return []plan.Statement{{SQL: sql, Redacted: sql}}, nil
	}
	for _, g := range grants {
		if err := ident.Privilege(g); err != nil {
			return nil, err
		}
	}
	sql := "GRANT " + strings.Join(grants, ", ") + " ON *.* TO " + account
	return []plan.Statement{{SQL: sql, Redacted: sql}}, nil
}

func checkCapabilities(d *types.DesiredState) error {
	if d.AuthType != types.AuthPassword {
		return &types.ConfigError{Reason: "authentication_type=" + string(d.AuthType) + " is not supported on mysql"}
	}
	if d.DefaultTablespace != "" || d.TempTablespace != "" {
		return &types.ConfigError{Reason: "tablespace attributes are not supported on mysql"}
	}
	if d.Profile != "" && !strings.EqualFold(d.Profile, "default") {
		return &types.ConfigError{Reason: "profiles are not supported on mysql"}
	}
	return nil
}

// accountLiteral validates the user name and renders the quoted
// 'name'@'host' account literal.
func accountLiteral(name string) (string, error) {
	if !ident.Valid(name) {
		return "", &types.ConfigError{Reason: "invalid user name " + name}
	}
	return "'" + name + "'@'" + accountHost + "'", nil
}

func authClause(d *types.DesiredState) (sql, redacted string, err error) {
	switch {
	case d.PasswordHash != "":
		if strings.ContainsAny(d.PasswordHash, "'") {
			return "", "", &types.ConfigError{Reason: "schema_password_hash must not contain quote characters"}
		}
		return " IDENTIFIED WITH mysql_native_password AS '" + d.PasswordHash + "'",
			" IDENTIFIED WITH mysql_native_password AS '" + plan.RedactedPassword + "'", nil
	case d.Password != "":
		if strings.ContainsAny(d.Password, "'\\") {
			return "", "", &types.ConfigError{Reason: "schema_password must not contain quote or backslash characters"}
		}
		return " IDENTIFIED BY '" + d.Password + "'",
			" IDENTIFIED BY '" + plan.RedactedPassword + "'", nil
	}
	return "", "", nil
}
