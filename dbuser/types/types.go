package types

import (
	"context"
	"strings"
)

// Dialect identifies a supported database engine.
type Dialect string

const (
	DialectOracle   Dialect = "oracle"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ParseDialect validates a dialect name supplied on the command line.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case DialectOracle:
		return DialectOracle, nil
	case DialectPostgres:
		return DialectPostgres, nil
	case DialectMySQL:
		return DialectMySQL, nil
	}
	return "", &ConfigError{Reason: "unknown dialect: " + s + " (supported: oracle, postgres, mysql)"}
}

// AuthType is the authentication mode of the managed user.
type AuthType string

const (
	AuthPassword AuthType = "password"
	AuthExternal AuthType = "external"
	AuthGlobal   AuthType = "global"
)

// ParseAuthType validates an authentication type name.
func ParseAuthType(s string) (AuthType, error) {
	switch AuthType(strings.ToLower(strings.TrimSpace(s))) {
	case AuthPassword, "":
		return AuthPassword, nil
	case AuthExternal:
		return AuthExternal, nil
	case AuthGlobal:
		return AuthGlobal, nil
	}
	return "", &ConfigError{Reason: "unknown authentication type: " + s + " (supported: password, external, global)"}
}

// TargetState is the desired lifecycle state of the managed user.
type TargetState string

const (
	StatePresent  TargetState = "present"
	StateAbsent   TargetState = "absent"
	StateLocked   TargetState = "locked"
	StateUnlocked TargetState = "unlocked"
)

// ParseTargetState validates a lifecycle state name.
func ParseTargetState(s string) (TargetState, error) {
	switch TargetState(strings.ToLower(strings.TrimSpace(s))) {
	case StatePresent, "":
		return StatePresent, nil
	case StateAbsent:
		return StateAbsent, nil
	case StateLocked:
		return StateLocked, nil
	case StateUnlocked:
		return StateUnlocked, nil
	}
	return "", &ConfigError{Reason: "unknown state: " + s + " (supported: present, absent, locked, unlocked)"}
}

// UpdatePasswordPolicy controls when credential clauses are re-applied to an
// existing user.
type UpdatePasswordPolicy string

const (
	UpdateAlways   UpdatePasswordPolicy = "always"
	UpdateOnCreate UpdatePasswordPolicy = "on_create"
)

// ParseUpdatePasswordPolicy validates an update-password policy name.
func ParseUpdatePasswordPolicy(s string) (UpdatePasswordPolicy, error) {
	switch UpdatePasswordPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case UpdateAlways, "":
		return UpdateAlways, nil
	case UpdateOnCreate:
		return UpdateOnCreate, nil
	}
	return "", &ConfigError{Reason: "unknown update_password policy: " + s + " (supported: always, on_create)"}
}

// ConnectMode selects the privilege level of the management session.
type ConnectMode string

const (
	ModeNormal ConnectMode = "normal"
	ModeSysDBA ConnectMode = "sysdba"
)

// ParseConnectMode validates a connection mode name.
func ParseConnectMode(s string) (ConnectMode, error) {
	switch ConnectMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNormal, "":
		return ModeNormal, nil
	case ModeSysDBA:
		return ModeSysDBA, nil
	}
	return "", &ConfigError{Reason: "unknown mode: " + s + " (supported: normal, sysdba)"}
}

// DesiredState declares the target configuration of one user/schema object.
type DesiredState struct {
	// Name is the user/schema name; matched case-insensitively against the
	// engine's user catalog.
	Name string

	// Password and PasswordHash are mutually exclusive credential material.
	// PasswordHash is an engine-specific precomputed verifier and takes
	// precedence over Password when both the create and alter paths build
	// credential clauses.
	Password     string
	PasswordHash string

	DefaultTablespace string
	TempTablespace    string

	// Profile defaults to "default" when empty.
	Profile string

	AuthType       AuthType
	State          TargetState
	UpdatePassword UpdatePasswordPolicy

	// Grants lists privileges/roles applied after creation. When empty the
	// dialect's session-connect privilege is granted instead.
	Grants []string
}

// Validate checks the invariants that can be verified before any database
// call is made. Violations are ConfigErrors.
func (d *DesiredState) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ConfigError{Reason: "schema name is required"}
	}
	if d.Password != "" && d.PasswordHash != "" {
		return &ConfigError{Reason: "schema_password and schema_password_hash are mutually exclusive"}
	}
	if d.AuthType != AuthPassword && (d.Password != "" || d.PasswordHash != "") {
		return &ConfigError{Reason: "credential material is only valid with authentication_type=password, got " + string(d.AuthType)}
	}
	return nil
}

// EffectiveProfile returns the profile to apply, falling back to the engine
// default profile name.
func (d *DesiredState) EffectiveProfile() string {
	if d.Profile == "" {
		return "default"
	}
	return d.Profile
}

// WantsLock reports whether the desired lifecycle state locks the account.
func (d *DesiredState) WantsLock() bool {
	return d.State == StateLocked
}

// ObservedState is a snapshot of the managed attributes read from the user
// catalog. All string attributes are normalized to lower case so they can be
// compared directly against desired values.
type ObservedState struct {
	Exists            bool
	AccountStatus     string
	AuthType          string
	DefaultTablespace string
	TempTablespace    string
	Profile           string
}

// Result is the terminal outcome of one reconciliation. Failures travel as
// ordinary errors, not as a flag on Result.
type Result struct {
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

// UserReader reads the current state of a user from the engine catalog.
type UserReader interface {
	// Exists reports whether the named user exists. A query failure is a
	// QueryError, never a false result.
	Exists(ctx context.Context, name string) (bool, error)

	// ReadState reads the managed attributes of the named user. For a
	// missing user it returns a snapshot with Exists=false and no error.
	ReadState(ctx context.Context, name string) (*ObservedState, error)

	// PasswordHash returns the stored password verifier for the named user,
	// or an empty string when the engine has none for it.
	PasswordHash(ctx context.Context, name string) (string, error)
}

// StatementExecutor executes DDL statements against the engine.
type StatementExecutor interface {
	ExecuteSQL(ctx context.Context, sql string) error
	SetDryRun(dryRun bool)
	IsDryRun() bool
}
