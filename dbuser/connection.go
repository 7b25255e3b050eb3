// Package dbuser establishes database sessions and exposes per-dialect
// catalog readers and a statement executor for user reconciliation.
package dbuser

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"slices"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	_ "github.com/godror/godror"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/stokaro/orauser/dbuser/mysql"
	"github.com/stokaro/orauser/dbuser/oracle"
	"github.com/stokaro/orauser/dbuser/postgres"
	"github.com/stokaro/orauser/dbuser/types"
)

// driverNames maps each dialect to its database/sql driver name.
var driverNames = map[types.Dialect]string{
	types.DialectOracle:   "godror",
	types.DialectPostgres: "pgx",
	types.DialectMySQL:    "mysql",
}

// defaultPorts holds the listener port used when none is configured.
var defaultPorts = map[types.Dialect]int{
	types.DialectOracle:   1521,
	types.DialectPostgres: 5432,
	types.DialectMySQL:    3306,
}

// ConnectOptions describes the management session to open.
//
// User and Password must be both set or both empty. An empty pair selects
// external (wallet) authentication, which is only available on Oracle: the
// session then authenticates through the client wallet configured for the
// service name.
type ConnectOptions struct {
	Dialect     types.Dialect
	Host        string
	Port        int
	ServiceName string
	User        string
	Password    string
	Mode        types.ConnectMode
}

// Validate checks the option invariants before any connection attempt.
func (o *ConnectOptions) Validate() error {
	if o.ServiceName == "" {
		return &types.ConfigError{Reason: "service name is required"}
	}
	if (o.User == "") != (o.Password == "") {
		return &types.ConfigError{Reason: "user and password must be supplied together"}
	}
	if o.User == "" && o.Dialect != types.DialectOracle {
		return &types.ConfigError{Reason: "wallet authentication is only supported on oracle"}
	}
	if o.Mode == types.ModeSysDBA && o.Dialect != types.DialectOracle {
		return &types.ConfigError{Reason: "mode=sysdba is only supported on oracle"}
	}
	return nil
}

func (o *ConnectOptions) host() string {
	if o.Host == "" {
		return "localhost"
	}
	return o.Host
}

func (o *ConnectOptions) port() int {
	if o.Port == 0 {
		return defaultPorts[o.Dialect]
	}
	return o.Port
}

// DatabaseConnection is one open management session. It owns the underlying
// *sql.DB and the dialect-specific reader and executor bound to it.
type DatabaseConnection struct {
	db         *sql.DB
	dialect    types.Dialect
	descriptor string
	reader     types.UserReader
	executor   types.StatementExecutor
}

// Connect validates the options, checks driver availability, and opens a
// session. Connection failures surface as a ConnectError carrying the
// descriptor used, never the credential values.
func Connect(ctx context.Context, opts ConnectOptions) (*DatabaseConnection, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	driver, ok := driverNames[opts.Dialect]
	if !ok {
		return nil, &types.ConfigError{Reason: "unsupported dialect: " + string(opts.Dialect)}
	}
	if !slices.Contains(sql.Drivers(), driver) {
		return nil, &types.DriverError{Driver: driver, Dialect: opts.Dialect}
	}

	dsn, descriptor := buildDSN(opts)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &types.ConnectError{Descriptor: descriptor, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &types.ConnectError{Descriptor: descriptor, Err: err}
	}

	conn := &DatabaseConnection{
		db:         db,
		dialect:    opts.Dialect,
		descriptor: descriptor,
		executor:   NewExecutor(db),
	}
	switch opts.Dialect {
	case types.DialectOracle:
		conn.reader = oracle.NewReader(db)
	case types.DialectPostgres:
		conn.reader = postgres.NewReader(db)
	case types.DialectMySQL:
		conn.reader = mysql.NewReader(db)
	}
	return conn, nil
}

// Reader returns the catalog reader bound to this session.
func (c *DatabaseConnection) Reader() types.UserReader {
	return c.reader
}

// Executor returns the statement executor bound to this session.
func (c *DatabaseConnection) Executor() types.StatementExecutor {
	return c.executor
}

// Dialect returns the dialect of this session.
func (c *DatabaseConnection) Dialect() types.Dialect {
	return c.dialect
}

// Descriptor returns the credential-free connection descriptor, suitable for
// logs and error messages.
func (c *DatabaseConnection) Descriptor() string {
	return c.descriptor
}

// Close releases the session. Safe to call on every exit path.
func (c *DatabaseConnection) Close() error {
	return c.db.Close()
}

// buildDSN constructs the driver DSN and the credential-free descriptor
// reported in errors and logs.
func buildDSN(opts ConnectOptions) (dsn, descriptor string) {
	switch opts.Dialect {
	case types.DialectPostgres:
		hostPort := fmt.Sprintf("%s:%d", opts.host(), opts.port())
		descriptor = "postgres://" + hostPort + "/" + opts.ServiceName
		// url.URL percent-encodes the userinfo, so credentials containing
		// URL-special characters still parse.
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(opts.User, opts.Password),
			Host:   hostPort,
			Path:   "/" + opts.ServiceName,
		}
		return u.String(), descriptor

	case types.DialectMySQL:
		cfg := gomysql.NewConfig()
		cfg.User = opts.User
		cfg.Passwd = opts.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", opts.host(), opts.port())
		cfg.DBName = opts.ServiceName
		descriptor = fmt.Sprintf("mysql://%s/%s", cfg.Addr, opts.ServiceName)
		return cfg.FormatDSN(), descriptor

	default: // oracle
		connectString := fmt.Sprintf("%s:%d/%s", opts.host(), opts.port(), opts.ServiceName)
		descriptor = "oracle://" + connectString

		var parts []string
		if opts.User == "" {
			// Wallet mode: the external credential store resolves the
			// identity for this connect string.
			parts = append(parts,
				fmt.Sprintf("connectString=%q", connectString),
				"externalAuth=1")
		} else {
			parts = append(parts,
				fmt.Sprintf("user=%q", opts.User),
				fmt.Sprintf("password=%q", opts.Password),
				fmt.Sprintf("connectString=%q", connectString))
		}
		if opts.Mode == types.ModeSysDBA {
			parts = append(parts, "adminRole=SYSDBA")
		}
		return strings.Join(parts, " "), descriptor
	}
}
