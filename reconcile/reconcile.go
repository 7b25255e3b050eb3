// Package reconcile converges one database user/schema object toward a
// declared desired state.
//
// Each invocation reads the live state fresh, decides one of no-op, create,
// alter or drop, executes the corresponding statements, and reports whether
// anything changed. No bookkeeping survives between invocations: rerunning
// with the same desired state is always safe and converges on changed=false.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stokaro/orauser/config"
	"github.com/stokaro/orauser/dbuser"
	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/dialects"
	"github.com/stokaro/orauser/plan/ident"
)

// Reconciler converges a single user object against one open session.
type Reconciler struct {
	reader  types.UserReader
	exec    types.StatementExecutor
	planner plan.Planner
	guard   *config.GuardOptions
	logger  *slog.Logger
}

// New creates a reconciler from its collaborators. The drop guard defaults
// to the planner's protected account list.
func New(reader types.UserReader, exec types.StatementExecutor, planner plan.Planner) *Reconciler {
	return &Reconciler{
		reader:  reader,
		exec:    exec,
		planner: planner,
		guard:   config.NewGuardOptions(planner.ProtectedNames()...),
		logger:  slog.Default(),
	}
}

// FromConnection creates a reconciler bound to an open session, selecting
// the planner for the session's dialect.
func FromConnection(conn *dbuser.DatabaseConnection) (*Reconciler, error) {
	planner, err := dialects.New(conn.Dialect())
	if err != nil {
		return nil, err
	}
	return New(conn.Reader(), conn.Executor(), planner), nil
}

// WithLogger sets the logger for the reconciler.
func (r *Reconciler) WithLogger(l *slog.Logger) *Reconciler {
	tmp := *r
	tmp.logger = l
	return &tmp
}

// WithGuardOptions replaces the drop guard.
func (r *Reconciler) WithGuardOptions(g *config.GuardOptions) *Reconciler {
	tmp := *r
	tmp.guard = g
	return &tmp
}

// Apply converges the live user object toward the desired state. The result
// reports whether anything changed; failures travel as errors and always
// abort the invocation.
func (r *Reconciler) Apply(ctx context.Context, d *types.DesiredState) (types.Result, error) {
	if err := d.Validate(); err != nil {
		return types.Result{}, err
	}

	exists, err := r.reader.Exists(ctx, d.Name)
	if err != nil {
		return types.Result{}, err
	}

	switch {
	case d.State == types.StateAbsent && !exists:
		return types.Result{Changed: false, Message: fmt.Sprintf("user %s already absent", d.Name)}, nil
	case d.State == types.StateAbsent:
		return r.drop(ctx, d)
	case !exists:
		return r.create(ctx, d)
	default:
		return r.alter(ctx, d)
	}
}

// create builds and executes the creation statement, then applies the grant
// list (or the dialect's session-connect default). A grant failure after a
// successful create leaves the user in place; the error says so because a
// rerun converges through the alter path.
func (r *Reconciler) create(ctx context.Context, d *types.DesiredState) (types.Result, error) {
	stmt, err := r.planner.CreateUser(d)
	if err != nil {
		return types.Result{}, err
	}
	r.logger.Debug("creating user", "name", d.Name, "statement", stmt.Redacted)
	if err := r.exec.ExecuteSQL(ctx, stmt.SQL); err != nil {
		return types.Result{}, &types.StatementError{Statement: stmt.Redacted, Err: err}
	}

	grantStmts, err := r.planner.GrantStatements(d.Name, ident.NormalizeGrants(d.Grants))
	if err != nil {
		return types.Result{}, err
	}
	for _, g := range grantStmts {
		r.logger.Debug("granting", "name", d.Name, "statement", g.Redacted)
		if err := r.exec.ExecuteSQL(ctx, g.SQL); err != nil {
			serr := &types.StatementError{Statement: g.Redacted, Err: err}
			return types.Result{}, fmt.Errorf("user %s was created but granting failed; rerun to converge: %w", d.Name, serr)
		}
	}

	return types.Result{Changed: true, Message: fmt.Sprintf("user %s created", d.Name)}, nil
}

// alter decides changed vs. unchanged purely from live state, then executes
// and re-verifies where the decision table requires it.
//
// One documented limitation is preserved deliberately: with a supplied hash
// and update_password=on_create, only the non-secret attribute tuple is
// compared. The stored verifier is never consulted on that path, so a
// drifted password alone reports unchanged.
func (r *Reconciler) alter(ctx context.Context, d *types.DesiredState) (types.Result, error) {
	stmt, attrs, err := r.planner.AlterUser(d)
	if err != nil {
		return types.Result{}, err
	}

	observed, err := r.reader.ReadState(ctx, d.Name)
	if err != nil {
		return types.Result{}, err
	}
	if !observed.Exists {
		return types.Result{}, fmt.Errorf("user %s disappeared between existence check and attribute read", d.Name)
	}

	match := tupleMatches(d, observed, attrs)
	unchanged := types.Result{Changed: false, Message: fmt.Sprintf("user %s unchanged", d.Name)}
	altered := types.Result{Changed: true, Message: fmt.Sprintf("user %s altered", d.Name)}

	switch {
	case d.PasswordHash != "" && d.UpdatePassword == types.UpdateAlways:
		// The stored verifier is the only observable proxy for the secret.
		stored, err := r.reader.PasswordHash(ctx, d.Name)
		if err != nil {
			return types.Result{}, err
		}
		if match && stored == d.PasswordHash {
			return unchanged, nil
		}
		if err := r.execute(ctx, stmt); err != nil {
			return types.Result{}, err
		}
		return altered, nil

	case d.PasswordHash != "":
		// update_password=on_create: attribute tuple only, hash not compared.
		if match {
			return unchanged, nil
		}
		if err := r.execute(ctx, stmt); err != nil {
			return types.Result{}, err
		}
		return altered, nil

	case match && d.UpdatePassword == types.UpdateAlways:
		// A plaintext password cannot be compared against the stored
		// verifier, so re-apply the statement and let the verifier tell us
		// whether the secret actually moved.
		before, err := r.reader.PasswordHash(ctx, d.Name)
		if err != nil {
			return types.Result{}, err
		}
		if err := r.execute(ctx, stmt); err != nil {
			return types.Result{}, err
		}
		after, err := r.reader.PasswordHash(ctx, d.Name)
		if err != nil {
			return types.Result{}, err
		}
		if before == after {
			return unchanged, nil
		}
		return altered, nil

	case match:
		return unchanged, nil

	default:
		if err := r.execute(ctx, stmt); err != nil {
			return types.Result{}, err
		}
		return altered, nil
	}
}

// drop refuses protected accounts, then executes a cascading drop.
func (r *Reconciler) drop(ctx context.Context, d *types.DesiredState) (types.Result, error) {
	if r.guard.IsProtected(d.Name) {
		return types.Result{}, &types.GuardError{Name: d.Name}
	}
	stmt, err := r.planner.DropUser(d.Name)
	if err != nil {
		return types.Result{}, err
	}
	r.logger.Debug("dropping user", "name", d.Name, "statement", stmt.Redacted)
	if err := r.exec.ExecuteSQL(ctx, stmt.SQL); err != nil {
		return types.Result{}, &types.StatementError{Statement: stmt.Redacted, Err: err}
	}
	return types.Result{Changed: true, Message: fmt.Sprintf("user %s dropped", d.Name)}, nil
}

func (r *Reconciler) execute(ctx context.Context, stmt plan.Statement) error {
	r.logger.Debug("altering user", "statement", stmt.Redacted)
	if err := r.exec.ExecuteSQL(ctx, stmt.SQL); err != nil {
		return &types.StatementError{Statement: stmt.Redacted, Err: err}
	}
	return nil
}

// tupleMatches compares the desired attribute tuple against the observed
// snapshot. Only the attributes the alter statement actually touches take
// part, in the fixed order: account status, authentication type, default
// tablespace, temporary tablespace, profile. All comparisons are
// case-insensitive against the lower-cased observed values.
func tupleMatches(d *types.DesiredState, obs *types.ObservedState, attrs plan.IncludedAttrs) bool {
	if desiredAccountStatus(d) != obs.AccountStatus {
		return false
	}
	if attrs.AuthType && !strings.EqualFold(string(d.AuthType), obs.AuthType) {
		return false
	}
	if attrs.DefaultTablespace && !strings.EqualFold(d.DefaultTablespace, obs.DefaultTablespace) {
		return false
	}
	if attrs.TempTablespace && !strings.EqualFold(d.TempTablespace, obs.TempTablespace) {
		return false
	}
	if attrs.Profile && !strings.EqualFold(d.EffectiveProfile(), obs.Profile) {
		return false
	}
	return true
}

// desiredAccountStatus maps the desired lifecycle state onto the catalog's
// account status vocabulary. present and unlocked both demand an open
// account; any other observed status (locked, expired variants) mismatches
// and triggers an alter.
func desiredAccountStatus(d *types.DesiredState) string {
	if d.WantsLock() {
		return "locked"
	}
	return "open"
}
