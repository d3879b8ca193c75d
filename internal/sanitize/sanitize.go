// Package sanitize escapes untrusted text before it is embedded in form
// fields or store filter expressions.
package sanitize

import "strings"

var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// String HTML-entity escapes the special characters of input.
//
// Escaping is not a substitute for structured queries; filter expressions
// are built with backend.Filter, which quotes the escaped value.
func String(input string) string {
	return entityReplacer.Replace(input)
}
