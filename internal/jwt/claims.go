package jwt

import (
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims es el claim set de un access token.
// sub lleva el userId como string; jti es un UUIDv4 por emisión.
type Claims struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	jwtv5.RegisteredClaims
}

// TokenID retorna el jti del token.
func (c *Claims) TokenID() string { return c.ID }

// RevocationKey identifica el token en la lista de revocación: el jti, o el
// subject si el token no trae jti. Con el fallback, revocar un token revoca
// todos los tokens del usuario hasta que ese token expire.
// Sin jti ni sub devuelve ok=false: el token no se puede revocar.
func (c *Claims) RevocationKey() (key string, ok bool) {
	if c.ID != "" {
		return c.ID, true
	}
	if c.Subject != "" {
		return c.Subject, true
	}
	return "", false
}
