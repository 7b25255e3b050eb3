package oracle_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/dialects/oracle"
)

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name    string
		desired types.DesiredState
		want    string
	}{
		{
			name: "plaintext password with storage attributes",
			desired: types.DesiredState{
				Name:              "reporter",
				Password:          "p1",
				DefaultTablespace: "users",
				TempTablespace:    "temp",
				AuthType:          types.AuthPassword,
				State:             types.StatePresent,
			},
			want: `CREATE USER "REPORTER" IDENTIFIED BY "p1" DEFAULT TABLESPACE "USERS" QUOTA UNLIMITED ON "USERS" TEMPORARY TABLESPACE "TEMP" PROFILE "DEFAULT"`,
		},
		{
			name: "hash wins over nothing else",
			desired: types.DesiredState{
				Name:         "reporter",
				PasswordHash: "S:8BE6EE",
				AuthType:     types.AuthPassword,
				State:        types.StatePresent,
			},
			want: `CREATE USER "REPORTER" IDENTIFIED BY VALUES 'S:8BE6EE' PROFILE "DEFAULT"`,
		},
		{
			name: "external authentication",
			desired: types.DesiredState{
				Name:     "reporter",
				AuthType: types.AuthExternal,
				State:    types.StatePresent,
			},
			want: `CREATE USER "REPORTER" IDENTIFIED EXTERNALLY PROFILE "DEFAULT"`,
		},
		{
			name: "global authentication",
			desired: types.DesiredState{
				Name:     "reporter",
				AuthType: types.AuthGlobal,
				State:    types.StatePresent,
			},
			want: `CREATE USER "REPORTER" IDENTIFIED GLOBALLY PROFILE "DEFAULT"`,
		},
		{
			name: "locked on creation with custom profile",
			desired: types.DesiredState{
				Name:     "reporter",
				Password: "p1",
				Profile:  "app_profile",
				AuthType: types.AuthPassword,
				State:    types.StateLocked,
			},
			want: `CREATE USER "REPORTER" IDENTIFIED BY "p1" PROFILE "APP_PROFILE" ACCOUNT LOCK`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			stmt, err := oracle.New().CreateUser(&tt.desired)
			c.Assert(err, qt.IsNil)
			c.Assert(stmt.SQL, qt.Equals, tt.want)
		})
	}
}

func TestCreateUser_RequiresCredentialForPasswordAuth(t *testing.T) {
	c := qt.New(t)

	_, err := oracle.New().CreateUser(&types.DesiredState{
		Name:     "reporter",
		AuthType: types.AuthPassword,
		State:    types.StatePresent,
	})

	var cfgErr *types.ConfigError
	c.Assert(errors.As(err, &cfgErr), qt.IsTrue, qt.Commentf("got %v", err))
}

func TestCreateUser_RejectsInvalidIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		desired types.DesiredState
	}{
		{
			name: "sql injection in user name",
			desired: types.DesiredState{
				Name:     `x"; DROP USER sys --`,
				Password: "p1",
				AuthType: types.AuthPassword,
			},
		},
		{
			name: "injection in tablespace",
			desired: types.DesiredState{
				Name:              "reporter",
				Password:          "p1",
				DefaultTablespace: "users; GRANT dba TO evil",
				AuthType:          types.AuthPassword,
			},
		},
		{
			name: "injection in profile",
			desired: types.DesiredState{
				Name:     "reporter",
				Password: "p1",
				Profile:  `p"rofile`,
				AuthType: types.AuthPassword,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := oracle.New().CreateUser(&tt.desired)
			c.Assert(err, qt.IsNotNil)
		})
	}
}

func TestCreateUser_RedactsCredentials(t *testing.T) {
	c := qt.New(t)

	stmt, err := oracle.New().CreateUser(&types.DesiredState{
		Name:     "reporter",
		Password: "sup3rsecret",
		AuthType: types.AuthPassword,
		State:    types.StatePresent,
	})

	c.Assert(err, qt.IsNil)
	c.Assert(stmt.SQL, qt.Contains, "sup3rsecret")
	c.Assert(stmt.Redacted, qt.Not(qt.Contains), "sup3rsecret")
	c.Assert(stmt.Redacted, qt.Contains, plan.RedactedPassword)
}

func TestAlterUser_AuthClauseInclusion(t *testing.T) {
	tests := []struct {
		name         string
		desired      types.DesiredState
		wantAuth     bool
		wantContains string
	}{
		{
			name: "plaintext with always",
			desired: types.DesiredState{
				Name: "reporter", Password: "p1",
				AuthType: types.AuthPassword, UpdatePassword: types.UpdateAlways,
			},
			wantAuth:     true,
			wantContains: `IDENTIFIED BY "p1"`,
		},
		{
			name: "plaintext with on_create is omitted",
			desired: types.DesiredState{
				Name: "reporter", Password: "p1",
				AuthType: types.AuthPassword, UpdatePassword: types.UpdateOnCreate,
			},
			wantAuth: false,
		},
		{
			name: "hash with on_create is still rendered",
			desired: types.DesiredState{
				Name: "reporter", PasswordHash: "S:AB",
				AuthType: types.AuthPassword, UpdatePassword: types.UpdateOnCreate,
			},
			wantAuth:     true,
			wantContains: "IDENTIFIED BY VALUES 'S:AB'",
		},
		{
			name: "external always re-applies",
			desired: types.DesiredState{
				Name:     "reporter",
				AuthType: types.AuthExternal, UpdatePassword: types.UpdateOnCreate,
			},
			wantAuth:     true,
			wantContains: "IDENTIFIED EXTERNALLY",
		},
		{
			name: "no credential material omits the clause",
			desired: types.DesiredState{
				Name:     "reporter",
				AuthType: types.AuthPassword, UpdatePassword: types.UpdateAlways,
			},
			wantAuth: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			tt.desired.State = types.StatePresent
			stmt, attrs, err := oracle.New().AlterUser(&tt.desired)
			c.Assert(err, qt.IsNil)
			c.Assert(attrs.AuthType, qt.Equals, tt.wantAuth)
			c.Assert(attrs.Profile, qt.IsTrue)
			if tt.wantContains != "" {
				c.Assert(stmt.SQL, qt.Contains, tt.wantContains)
			} else {
				c.Assert(stmt.SQL, qt.Not(qt.Contains), "IDENTIFIED")
			}
			// present/unlocked always map to an unlock clause.
			c.Assert(stmt.SQL, qt.Contains, "ACCOUNT UNLOCK")
		})
	}
}

func TestAlterUser_LockClause(t *testing.T) {
	c := qt.New(t)

	stmt, _, err := oracle.New().AlterUser(&types.DesiredState{
		Name:           "reporter",
		AuthType:       types.AuthPassword,
		State:          types.StateLocked,
		UpdatePassword: types.UpdateOnCreate,
	})

	c.Assert(err, qt.IsNil)
	c.Assert(stmt.SQL, qt.Equals, `ALTER USER "REPORTER" PROFILE "DEFAULT" ACCOUNT LOCK`)
}

func TestDropUser(t *testing.T) {
	c := qt.New(t)

	stmt, err := oracle.New().DropUser("reporter")
	c.Assert(err, qt.IsNil)
	c.Assert(stmt.SQL, qt.Equals, `DROP USER "REPORTER" CASCADE`)

	_, err = oracle.New().DropUser("x; DROP DATABASE")
	c.Assert(err, qt.IsNotNil)
}

func TestGrantStatements(t *testing.T) {
	tests := []struct {
		name   string
		grants []string
		want   string
	}{
		{
			name:   "default session grant",
			grants: nil,
			want:   `GRANT create session TO "REPORTER"`,
		},
		{
			name:   "explicit grants joined",
			grants: []string{"create session", "create table"},
			want:   `GRANT create session, create table TO "REPORTER"`,
		},
		{
			name:   "role grant",
			grants: []string{"connect"},
			want:   `GRANT connect TO "REPORTER"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			stmts, err := oracle.New().GrantStatements("reporter", tt.grants)
			c.Assert(err, qt.IsNil)
			c.Assert(stmts, qt.HasLen, 1)
			c.Assert(stmts[0].SQL, qt.Equals, tt.want)
		})
	}
}

func TestGrantStatements_RejectsInjection(t *testing.T) {
	c := qt.New(t)

	_, err := oracle.New().GrantStatements("reporter", []string{"dba; DROP USER sys"})
	c.Assert(err, qt.IsNotNil)
}

func TestProtectedNames(t *testing.T) {
	c := qt.New(t)
	c.Assert(oracle.New().ProtectedNames(), qt.DeepEquals, []string{"sys", "system", "dbsnmp"})
}
