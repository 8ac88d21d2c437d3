// Package types define tipos de dominio compartidos entre paquetes.
package types

import (
	"fmt"
	"strings"
)

// Provider identifica un proveedor de identidad social.
// El valor es el que se persiste y viaja en la API de usuarios.
type Provider string

const (
	ProviderKakao  Provider = "KAKAO"
	ProviderNaver  Provider = "NAVER"
	ProviderGoogle Provider = "GOOGLE"
)

// Providers lista el conjunto cerrado de proveedores soportados.
var Providers = []Provider{ProviderKakao, ProviderNaver, ProviderGoogle}

// IsValid retorna true si el proveedor es uno de los soportados.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderKakao, ProviderNaver, ProviderGoogle:
		return true
	}
	return false
}

// Slug retorna el nombre en minúsculas usado en rutas ("/oauth/kakao/login").
func (p Provider) Slug() string { return strings.ToLower(string(p)) }

func (p Provider) String() string { return string(p) }

// ParseProvider acepta "kakao", "KAKAO", " Kakao ".
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return p, nil
}

// Role es el rol de aplicación de un usuario.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid retorna true si el rol es conocido.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}
