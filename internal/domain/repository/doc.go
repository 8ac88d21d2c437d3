// Package repository define el contrato del store de perfiles de usuario.
//
// La capa de sesión (internal/auth) solo conoce UserRepository; las
// implementaciones viven en internal/store:
//
//	┌─────────────────────────────────────────────────────┐
//	│        auth.Service / http controllers              │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository.UserRepository             │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┼──────────────┐
//	         ▼              ▼              ▼
//	┌─────────────┐  ┌─────────────┐  ┌─────────────┐
//	│  store/pg   │  │store/memory │  │store/userapi│
//	└─────────────┘  └─────────────┘  └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
