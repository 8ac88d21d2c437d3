package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLen es el largo mínimo del secreto HMAC (HS256 requiere >= 256 bits).
const MinSecretLen = 32

var (
	// ErrTokenInvalid cubre firma inválida, algoritmo inesperado, estructura
	// malformada y expiración.
	ErrTokenInvalid = errors.New("jwt: token invalid")

	ErrSecretTooShort = fmt.Errorf("jwt: secret must be at least %d bytes", MinSecretLen)

	// ErrTTLNotWholeSeconds: iat y exp viajan en segundos enteros.
	ErrTTLNotWholeSeconds = errors.New("jwt: access TTL must be a whole number of seconds")
)

// AccessToken es el resultado de Issue.
type AccessToken struct {
	Token     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer firma y verifica access tokens HS256 con un único secreto.
// Es inmutable después de NewIssuer y seguro para uso concurrente.
type Issuer struct {
	Iss       string        // "iss" opcional; si está seteado Verify lo exige
	AccessTTL time.Duration // TTL de los access tokens

	secret []byte
	now    func() time.Time
}

// Option configura un Issuer.
type Option func(*Issuer)

// WithIssuer setea el claim "iss".
func WithIssuer(iss string) Option {
	return func(i *Issuer) { i.Iss = iss }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer crea un Issuer. El secreto se usa tal cual como clave HMAC.
func NewIssuer(secret string, accessTTL time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	if accessTTL <= 0 {
		return nil, errors.New("jwt: access TTL must be positive")
	}
	if accessTTL%time.Second != 0 {
		return nil, ErrTTLNotWholeSeconds
	}
	i := &Issuer{
		AccessTTL: accessTTL,
		secret:    []byte(secret),
		now:       time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// Issue emite un access token para el usuario. iat y exp se truncan a segundos,
// así que exp - iat == AccessTTL exacto.
func (i *Issuer) Issue(userID int64, email, nickname string) (AccessToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.AccessTTL)
	jti := uuid.NewString()

	claims := Claims{
		UserID:   userID,
		Email:    email,
		Nickname: nickname,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.Iss,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("jwt: sign: %w", err)
	}

	return AccessToken{
		Token:     signed,
		TokenID:   jti,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}
