// Package config provides configuration options for the user reconciler.
//
// This package provides a simple, programmatic API for configuring
// reconciliation behavior when using the reconciler as a library. It focuses
// on clean Go APIs rather than external configuration file management.
package config

import "strings"

// GuardOptions controls which accounts the drop path refuses to touch.
// Protected names are matched case-insensitively and rejected before any
// statement is built or executed.
type GuardOptions struct {
	// ProtectedNames is the list of account names that must never be
	// dropped. It normally holds the engine's own system and administrative
	// accounts.
	ProtectedNames []string
}

// NewGuardOptions returns guard options protecting exactly the given names.
//
// Example:
//
//	opts := config.NewGuardOptions("sys", "system", "dbsnmp")
func NewGuardOptions(names ...string) *GuardOptions {
	return &GuardOptions{ProtectedNames: names}
}

// WithAdditionalProtectedNames returns new guard options that include the
// current protected names plus the additional ones specified.
//
// Example:
//
//	opts := config.NewGuardOptions("sys", "system").WithAdditionalProtectedNames("appadmin")
func (o *GuardOptions) WithAdditionalProtectedNames(names ...string) *GuardOptions {
	all := make([]string, len(o.ProtectedNames)+len(names))
	copy(all, o.ProtectedNames)
	copy(all[len(o.ProtectedNames):], names)
	return &GuardOptions{ProtectedNames: all}
}

// IsProtected reports whether the given account name is protected from
// dropping, matching case-insensitively.
func (o *GuardOptions) IsProtected(name string) bool {
	for _, p := range o.ProtectedNames {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
