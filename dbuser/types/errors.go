package types

import "fmt"

// ConfigError reports contradictory or missing parameters. It is always
// raised before any database call is made.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// DriverError reports that the database/sql driver required for a dialect is
// not linked into the binary.
type DriverError struct {
	Driver  string
	Dialect Dialect
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver %q for dialect %q is not available in this build", e.Driver, e.Dialect)
}

// ConnectError reports a failed connection attempt. Descriptor identifies the
// target (host, port, service) and never contains credential values.
type ConnectError struct {
	Descriptor string
	Err        error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Descriptor, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError reports a failed catalog read. Reads gate the mutating logic, so
// a QueryError always aborts the whole reconciliation.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (query: %s)", e.Err, e.Query)
}

func (e *QueryError) Unwrap() error { return e.Err }

// StatementError reports a failed DDL execution. Statement holds the redacted
// statement text: credential clauses are replaced before the error is built.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed: %v (statement: %s)", e.Err, e.Statement)
}

func (e *StatementError) Unwrap() error { return e.Err }

// GuardError reports a refused drop of a protected account. No statement is
// executed when this error is returned.
type GuardError struct {
	Name string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("refusing to drop protected account %q", e.Name)
}
