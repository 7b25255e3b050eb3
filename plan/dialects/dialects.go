// Package dialects selects the statement planner for a dialect.
package dialects

import (
	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan"
	"github.com/stokaro/orauser/plan/dialects/mysql"
	"github.com/stokaro/orauser/plan/dialects/oracle"
	"github.com/stokaro/orauser/plan/dialects/postgres"
)

// New returns the planner for the given dialect.
func New(dialect types.Dialect) (plan.Planner, error) {
	switch dialect {
	case types.DialectOracle:
		return oracle.New(), nil
	case types.DialectPostgres:
		return postgres.New(), nil
	case types.DialectMySQL:
		return mysql.New(), nil
	}
	return nil, &types.ConfigError{Reason: "unsupported dialect: " + string(dialect)}
}
