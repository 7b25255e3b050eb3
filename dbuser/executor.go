package dbuser

import (
	"context"
	"database/sql"
	"log/slog"
)

// Executor runs DDL statements against an open session. In dry-run mode it
// logs what would run and executes nothing, so every reconciliation path can
// be exercised without touching the database.
type Executor struct {
	db     *sql.DB
	dryRun bool
	logger *slog.Logger
}

// NewExecutor creates an executor bound to db.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db, logger: slog.Default()}
}

// WithLogger sets the logger for the executor.
func (e *Executor) WithLogger(l *slog.Logger) *Executor {
	tmp := *e
	tmp.logger = l
	return &tmp
}

// ExecuteSQL executes one statement, or logs it in dry-run mode. Callers are
// expected to pass redacted text to logs and errors themselves; this method
// never logs the statement it executes.
func (e *Executor) ExecuteSQL(ctx context.Context, stmt string) error {
	if e.dryRun {
		e.logger.Info("dry run: skipping statement execution")
		return nil
	}
	_, err := e.db.ExecContext(ctx, stmt)
	return err
}

// SetDryRun toggles dry-run mode.
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun reports whether the executor is in dry-run mode.
func (e *Executor) IsDryRun() bool {
	return e.dryRun
}
