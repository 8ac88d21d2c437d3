package validation

import "regexp"

// scope-token de RFC 6749 §3.3: ASCII visible salvo espacio, '"' y '\'.
// Acepta tanto "profile_nickname" como "https://www.googleapis.com/auth/userinfo.email".
var scopeTokenRe = regexp.MustCompile(`^[\x21\x23-\x5B\x5D-\x7E]{1,256}$`)

// ValidScope reports whether s can be sent as a single OAuth scope token.
func ValidScope(s string) bool {
	return scopeTokenRe.MatchString(s)
}

// InvalidScopes devuelve los scopes que no pasan ValidScope.
func InvalidScopes(scopes []string) []string {
	var bad []string
	for _, s := range scopes {
		if !ValidScope(s) {
			bad = append(bad, s)
		}
	}
	return bad
}
