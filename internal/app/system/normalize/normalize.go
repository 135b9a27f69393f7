// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims surrounding space and lowercases the address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Token trims and lowercases an enum value such as a status or priority.
func Token(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
