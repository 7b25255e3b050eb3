// Package ident validates and quotes SQL identifiers that cannot travel as
// bind parameters (user names, tablespaces, profiles). Values are checked
// against an allow-list pattern before they are ever interpolated into DDL.
package ident

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/stokaro/orauser/dbuser/types"
)

// identPattern is the allow-list for unquoted identifiers across the
// supported engines: a leading letter followed by letters, digits and the
// Oracle-permitted punctuation characters.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*$`)

// privilegePattern additionally allows single spaces, for multi-word
// privilege names such as "create session".
var privilegePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$# ]*[A-Za-z0-9_$#]$`)

const maxIdentLength = 128

// Valid reports whether s is acceptable as a SQL identifier.
func Valid(s string) bool {
	return len(s) <= maxIdentLength && identPattern.MatchString(s)
}

// Oracle validates s and returns it quoted for Oracle DDL. The identifier is
// upper-cased first so the quoted form matches what the data dictionary
// stores for an unquoted identifier.
func Oracle(s string) (string, error) {
	if !Valid(s) {
		return "", &types.ConfigError{Reason: fmt.Sprintf("invalid identifier %q", s)}
	}
	return `"` + strings.ToUpper(s) + `"`, nil
}

// Postgres validates s and returns it quoted for PostgreSQL DDL. The
// identifier is lower-cased first, matching the catalog form of an unquoted
// identifier.
func Postgres(s string) (string, error) {
	if !Valid(s) {
		return "", &types.ConfigError{Reason: fmt.Sprintf("invalid identifier %q", s)}
	}
	return pq.QuoteIdentifier(strings.ToLower(s)), nil
}

// MySQL validates s and returns it backtick-quoted for MySQL DDL.
func MySQL(s string) (string, error) {
	if !Valid(s) {
		return "", &types.ConfigError{Reason: fmt.Sprintf("invalid identifier %q", s)}
	}
	return "`" + s + "`", nil
}

// Privilege validates a privilege or role name. Multi-word system privileges
// are allowed; quoting is left to the caller because privilege keywords are
// not quoted identifiers.
func Privilege(s string) error {
	if len(s) > maxIdentLength || !privilegePattern.MatchString(s) {
		return &types.ConfigError{Reason: fmt.Sprintf("invalid privilege or role name %q", s)}
	}
	return nil
}

// NormalizeGrants trims whitespace and strips list-literal punctuation from a
// grant list, dropping entries that end up empty. The result preserves the
// input order.
func NormalizeGrants(grants []string) []string {
	cleaned := make([]string, 0, len(grants))
	for _, g := range grants {
		g = strings.Trim(strings.TrimSpace(g), `[]'"`)
		g = strings.TrimSpace(g)
		if g != "" {
			cleaned = append(cleaned, g)
		}
	}
	return cleaned
}
