// internal/app/system/normalize/normalize.go

// Package normalize provides canonicalization helpers for user-entered
// identifying fields. Stores call these before persisting so that lookups
// (unique email index, case-insensitive sorts) behave consistently.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
