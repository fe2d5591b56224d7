// Package credentials parses the inline credential format
//
//	principal:<name>;role:<role>[;key:value...]
//
// used by test and bootstrap setups in place of a signed bearer token.
package credentials

import "strings"

const (
	PrincipalKey = "principal"
	RoleKey      = "role"
	RealmKey     = "realm"

	pairSeparator     = ";"
	keyValueSeparator = ":"
)

// Claims maps claim names to values.
type Claims map[string]string

// Principal returns the claimed principal name, if any.
func (c Claims) Principal() (string, bool) {
	v, ok := c[PrincipalKey]
	return v, ok && v != ""
}

// Role returns the requested role. It is empty if no role was claimed.
func (c Claims) Role() string {
	return c[RoleKey]
}

// IsStructured reports whether credentials use the key/value format.
// Anything else is an opaque token.
func IsStructured(credentials string) bool {
	return strings.Contains(credentials, pairSeparator) || strings.Contains(credentials, keyValueSeparator)
}

// Parse extracts the claims of structured credentials.
//
// Segments without a key/value separator or with an empty key are skipped,
// and the first occurrence of a repeated key wins. Opaque credentials yield
// empty claims. The error is reserved for a strict policy and is currently
// always nil.
func Parse(credentials string) (Claims, error) {
	claims := make(Claims)
	if !IsStructured(credentials) {
		return claims, nil
	}

	for _, segment := range strings.Split(credentials, pairSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, keyValueSeparator)
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, exists := claims[key]; exists {
			continue
		}
		claims[key] = strings.TrimSpace(value)
	}
	return claims, nil
}
