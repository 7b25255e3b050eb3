// Package reconcile implements the `orauser reconcile` command.
package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stokaro/orauser/dbuser"
	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Converge a database user/schema to the desired state",
	Long: `Converge the existence, credentials and attributes of one database
user/schema object to the declared desired state.

The command connects to the target database, inspects the named user, and
performs the minimal action needed: create, alter, drop, or nothing. The
result is a JSON object {"changed": bool, "message": string} on stdout;
failures print {"failed": true, "message": string} and exit non-zero.

Every flag can also be supplied through an ORAUSER_ environment variable
(dashes become underscores), which is the recommended way to pass secrets:

  ORAUSER_PASSWORD=... ORAUSER_SCHEMA_PASSWORD=... \
    orauser reconcile --service-name ORCL --user system --schema reporter`,
	RunE: runReconcile,
}

const (
	hostnameFlag           = "hostname"
	portFlag               = "port"
	serviceNameFlag        = "service-name"
	userFlag               = "user"
	passwordFlag           = "password"
	modeFlag               = "mode"
	dialectFlag            = "dialect"
	schemaFlag             = "schema"
	schemaPasswordFlag     = "schema-password"
	schemaPasswordHashFlag = "schema-password-hash"
	defaultTablespaceFlag  = "default-tablespace"
	tempTablespaceFlag     = "default-temp-tablespace"
	updatePasswordFlag     = "update-password"
	authTypeFlag           = "authentication-type"
	profileFlag            = "profile"
	grantsFlag             = "grants"
	stateFlag              = "state"
	dryRunFlag             = "dry-run"
)

var reconcileFlags = map[string]cobraflags.Flag{
	hostnameFlag: &cobraflags.StringFlag{
		Name:  hostnameFlag,
		Value: "localhost",
		Usage: "Database host",
	},
	portFlag: &cobraflags.IntFlag{
		Name:  portFlag,
		Value: 0,
		Usage: "Listener port (0 selects the dialect default)",
	},
	serviceNameFlag: &cobraflags.StringFlag{
		Name:  serviceNameFlag,
		Value: "",
		Usage: "Target database service name (required)",
	},
	userFlag: &cobraflags.StringFlag{
		Name:  userFlag,
		Value: "",
		Usage: "Connection user; omit together with --password for wallet authentication",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Connection password; prefer the ORAUSER_PASSWORD environment variable",
	},
	modeFlag: &cobraflags.StringFlag{
		Name:  modeFlag,
		Value: "normal",
		Usage: "Connection privilege mode (normal, sysdba)",
	},
	dialectFlag: &cobraflags.StringFlag{
		Name:  dialectFlag,
		Value: "oracle",
		Usage: "Database dialect (oracle, postgres, mysql)",
	},
	schemaFlag: &cobraflags.StringFlag{
		Name:  schemaFlag,
		Value: "",
		Usage: "Target user/schema name (required)",
	},
	schemaPasswordFlag: &cobraflags.StringFlag{
		Name:  schemaPasswordFlag,
		Value: "",
		Usage: "Plaintext password for the managed user; prefer ORAUSER_SCHEMA_PASSWORD",
	},
	schemaPasswordHashFlag: &cobraflags.StringFlag{
		Name:  schemaPasswordHashFlag,
		Value: "",
		Usage: "Precomputed password verifier; mutually exclusive with --schema-password",
	},
	defaultTablespaceFlag: &cobraflags.StringFlag{
		Name:  defaultTablespaceFlag,
		Value: "",
		Usage: "Default tablespace, with an unlimited quota on it (oracle only)",
	},
	tempTablespaceFlag: &cobraflags.StringFlag{
		Name:  tempTablespaceFlag,
		Value: "",
		Usage: "Default temporary tablespace (oracle only)",
	},
	updatePasswordFlag: &cobraflags.StringFlag{
		Name:  updatePasswordFlag,
		Value: "always",
		Usage: "When to re-apply credentials (always, on_create)",
	},
	authTypeFlag: &cobraflags.StringFlag{
		Name:  authTypeFlag,
		Value: "password",
		Usage: "Authentication type of the managed user (password, external, global)",
	},
	profileFlag: &cobraflags.StringFlag{
		Name:  profileFlag,
		Value: "default",
		Usage: "Database profile to assign (oracle only)",
	},
	grantsFlag: &cobraflags.StringFlag{
		Name:  grantsFlag,
		Value: "",
		Usage: "Comma-separated privileges/roles to grant after creation",
	},
	stateFlag: &cobraflags.StringFlag{
		Name:  stateFlag,
		Value: "present",
		Usage: "Desired lifecycle state (present, absent, locked, unlocked)",
	},
	dryRunFlag: &cobraflags.BoolFlag{
		Name:  dryRunFlag,
		Value: false,
		Usage: "Plan statements without executing them",
	},
}

// NewReconcileCommand creates the reconcile subcommand.
func NewReconcileCommand() *cobra.Command {
	cobraflags.RegisterMap(reconcileCmd, reconcileFlags)
	return reconcileCmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	// The flags are viper-bound, so ORAUSER_* environment variables resolve
	// through GetString whenever the flag itself is not set.
	viper.SetEnvPrefix("ORAUSER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	dialect, err := types.ParseDialect(reconcileFlags[dialectFlag].GetString())
	if err != nil {
		return fail(err)
	}
	mode, err := types.ParseConnectMode(reconcileFlags[modeFlag].GetString())
	if err != nil {
		return fail(err)
	}
	authType, err := types.ParseAuthType(reconcileFlags[authTypeFlag].GetString())
	if err != nil {
		return fail(err)
	}
	state, err := types.ParseTargetState(reconcileFlags[stateFlag].GetString())
	if err != nil {
		return fail(err)
	}
	policy, err := types.ParseUpdatePasswordPolicy(reconcileFlags[updatePasswordFlag].GetString())
	if err != nil {
		return fail(err)
	}

	desired := &types.DesiredState{
		Name:              reconcileFlags[schemaFlag].GetString(),
		Password:          reconcileFlags[schemaPasswordFlag].GetString(),
		PasswordHash:      reconcileFlags[schemaPasswordHashFlag].GetString(),
		DefaultTablespace: reconcileFlags[defaultTablespaceFlag].GetString(),
		TempTablespace:    reconcileFlags[tempTablespaceFlag].GetString(),
		Profile:           reconcileFlags[profileFlag].GetString(),
		AuthType:          authType,
		State:             state,
		UpdatePassword:    policy,
		Grants:            splitGrants(reconcileFlags[grantsFlag].GetString()),
	}
	// Parameter contradictions are caught before any connection attempt.
	if err := desired.Validate(); err != nil {
		return fail(err)
	}

	conn, err := dbuser.Connect(cmd.Context(), dbuser.ConnectOptions{
		Dialect:     dialect,
		Host:        reconcileFlags[hostnameFlag].GetString(),
		Port:        reconcileFlags[portFlag].GetInt(),
		ServiceName: reconcileFlags[serviceNameFlag].GetString(),
		User:        reconcileFlags[userFlag].GetString(),
		Password:    reconcileFlags[passwordFlag].GetString(),
		Mode:        mode,
	})
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	conn.Executor().SetDryRun(reconcileFlags[dryRunFlag].GetBool())

	rec, err := reconcile.FromConnection(conn)
	if err != nil {
		return fail(err)
	}

	result, err := rec.Apply(cmd.Context(), desired)
	if err != nil {
		return fail(err)
	}

	return json.NewEncoder(os.Stdout).Encode(result)
}

// fail emits the failure contract on stdout and returns the error so the
// process exits non-zero.
func fail(err error) error {
	_ = json.NewEncoder(os.Stdout).Encode(map[string]any{
		"failed":  true,
		"message": err.Error(),
	})
	return fmt.Errorf("reconciliation failed: %w", err)
}

func splitGrants(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
