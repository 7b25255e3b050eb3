package postgres_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/dialects/postgres"
)

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name    string
		desired types.DesiredState
		want    string
	}{
		{
			name: "login role with password",
			desired: types.DesiredState{
				Name: "Reporter", Password: "p1",
				AuthType: types.AuthPassword, State: types.StatePresent,
			},
			want: `CREATE ROLE "reporter" LOGIN ENCRYPTED PASSWORD 'p1'`,
		},
		{
			name: "locked role maps to NOLOGIN",
			desired: types.DesiredState{
				Name: "reporter", Password: "p1",
				AuthType: types.AuthPassword, State: types.StateLocked,
			},
			want: `CREATE ROLE "reporter" NOLOGIN ENCRYPTED PASSWORD 'p1'`,
		},
		{
			name: "scram verifier passes through the password clause",
			desired: types.DesiredState{
				Name: "reporter", PasswordHash: "SCRAM-SHA-256$4096:salt$stored:server",
				AuthType: types.AuthPassword, State: types.StatePresent,
			},
			want: `CREATE ROLE "reporter" LOGIN ENCRYPTED PASSWORD 'SCRAM-SHA-256$4096:salt$stored:server'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			stmt, err := postgres.New().CreateUser(&tt.desired)
			c.Assert(err, qt.IsNil)
			c.Assert(stmt.SQL, qt.Equals, tt.want)
			c.Assert(stmt.Redacted, qt.Not(qt.Contains), "p1")
		})
	}
}

func TestCreateUser_CapabilityErrors(t *testing.T) {
	tests := []struct {
		name    string
		desired types.DesiredState
	}{
		{
			name: "external auth unsupported",
			desired: types.DesiredState{
				Name: "reporter", AuthType: types.AuthExternal,
			},
		},
		{
			name: "tablespaces unsupported",
			desired: types.DesiredState{
				Name: "reporter", Password: "p1",
				DefaultTablespace: "users", AuthType: types.AuthPassword,
			},
		},
		{
			name: "profiles unsupported",
			desired: types.DesiredState{
				Name: "reporter", Password: "p1",
				Profile: "app_profile", AuthType: types.AuthPassword,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := postgres.New().CreateUser(&tt.desired)
			var cfgErr *types.ConfigError
			c.Assert(errors.As(err, &cfgErr), qt.IsTrue, qt.Commentf("got %v", err))
		})
	}
}

func TestAlterUser(t *testing.T) {
	c := qt.New(t)

	stmt, attrs, err := postgres.New().AlterUser(&types.DesiredState{
		Name:           "reporter",
		Password:       "p2",
		AuthType:       types.AuthPassword,
		State:          types.StateUnlocked,
		UpdatePassword: types.UpdateAlways,
	})

	c.Assert(err, qt.IsNil)
	c.Assert(stmt.SQL, qt.Equals, `ALTER ROLE "reporter" WITH LOGIN ENCRYPTED PASSWORD 'p2'`)
	c.Assert(attrs.AuthType, qt.IsTrue)
	c.Assert(attrs.Profile, qt.IsFalse)
}

func TestAlterUser_OnCreateOmitsPassword(t *testing.T) {
	c := qt.New(t)

	stmt, attrs, err := postgres.New().AlterUser(&types.DesiredState{
		Name:           "reporter",
		Password:       "p2",
		AuthType:       types.AuthPassword,
		State:          types.StateLocked,
		UpdatePassword: types.UpdateOnCreate,
	})

	c.Assert(err, qt.IsNil)
	c.Assert(stmt.SQL, qt.Equals, `ALTER ROLE "reporter" WITH NOLOGIN`)
	c.Assert(attrs.AuthType, qt.IsFalse)
}

func TestDropUser(t *testing.T) {
	c := qt.New(t)

	stmt, err := postgres.New().DropUser("reporter")
	c.Assert(err, qt.IsNil)
	c.Assert(stmt.SQL, qt.Equals, `DROP ROLE "reporter"`)
}

func TestGrantStatements(t *testing.T) {
	c := qt.New(t)

	// LOGIN already covers session access, so an empty list grants nothing.
	stmts, err := postgres.New().GrantStatements("reporter", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(stmts, qt.HasLen, 0)

	stmts, err = postgres.New().GrantStatements("reporter", []string{"pg_read_all_data", "pg_monitor"})
	c.Assert(err, qt.IsNil)
	c.Assert(stmts, qt.HasLen, 2)
	c.Assert(stmts[0].SQL, qt.Equals, `GRANT pg_read_all_data TO "reporter"`)
	c.Assert(stmts[1].SQL, qt.Equals, `GRANT pg_monitor TO "reporter"`)
}

func TestRedactedPasswordPlaceholder(t *testing.T) {
	c := qt.New(t)

	stmt, err := postgres.New().CreateUser(&types.DesiredState{
		Name: "reporter", Password: "secret",
		AuthType: types.AuthPassword, State: types.StatePresent,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(stmt.Redacted, qt.Contains, plan.RedactedPassword)
}
