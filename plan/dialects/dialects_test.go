package dialects_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/orauser/dbuser/types"
	"github.com/stokaro/orauser/plan/dialects"
)

func TestNew(t *testing.T) {
	c := qt.New(t)

	for _, d := range []types.Dialect{types.DialectOracle, types.DialectPostgres, types.DialectMySQL} {
		p, err := dialects.New(d)
		c.Assert(err, qt.IsNil)
		c.Assert(p.Dialect(), qt.Equals, d)
	}

	_, err := dialects.New("sqlite")
	var cfgErr *types.ConfigError
	c.Assert(errors.As(err, &cfgErr), qt.IsTrue)
}
