package config_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/orauser/config"
)

func TestIsProtected(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"sys", true},
		{"SYS", true},
		{"System", true},
		{"dbsnmp", true},
		{"reporter", false},
		{"", false},
	}

	opts := config.NewGuardOptions("sys", "system", "dbsnmp")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(opts.IsProtected(tt.name), qt.Equals, tt.want,
				qt.Commentf("IsProtected(%q)", tt.name))
		})
	}
}

func TestWithAdditionalProtectedNames(t *testing.T) {
	c := qt.New(t)

	base := config.NewGuardOptions("sys", "system")
	extended := base.WithAdditionalProtectedNames("appadmin", "etl_owner")

	c.Assert(extended.ProtectedNames, qt.DeepEquals,
		[]string{"sys", "system", "appadmin", "etl_owner"})

	// The original is not mutated.
	c.Assert(base.ProtectedNames, qt.HasLen, 2)
	c.Assert(base.IsProtected("appadmin"), qt.IsFalse)
	c.Assert(extended.IsProtected("APPADMIN"), qt.IsTrue)
}
