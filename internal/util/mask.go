// Package util tiene helpers chicos sin dependencias.
package util

import "strings"

// Dominios de los proveedores de login: no identifican a nadie y sirven
// para leer los logs, así que quedan visibles.
var publicMailDomains = map[string]struct{}{
	"kakao.com":      {},
	"daum.net":       {},
	"hanmail.net":    {},
	"naver.com":      {},
	"gmail.com":      {},
	"googlemail.com": {},
}

// MaskEmail deja visible la primera letra del usuario. El dominio queda
// entero si es de un proveedor (ryan@kakao.com -> r…@kakao.com) y con la
// primera letra de la primera etiqueta si no (ryan@corp.co.kr -> r…@c….co.kr).
// Sin "@" enmascara el string completo.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	user, domain, found := strings.Cut(s, "@")
	if !found || user == "" {
		return maskWord(s)
	}
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	if _, ok := publicMailDomains[domain]; ok {
		return user + "@" + domain
	}
	label, rest, _ := strings.Cut(domain, ".")
	if len(label) > 1 {
		label = label[:1] + "…"
	}
	if rest == "" {
		return user + "@" + label
	}
	return user + "@" + label + "." + rest
}

func maskWord(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 3:
		return "***"
	default:
		return s[:1] + "…" + s[len(s)-1:]
	}
}
