package models

import "strings"

// NormalizeEmail is applied before every auth call that carries an
// email: trim surrounding whitespace, lowercase the rest.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
