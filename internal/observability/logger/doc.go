// Package logger expone un logger Zap singleton con scoping por contexto.
//
// # Decisiones
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Scoping: cada request lleva su propio logger con request_id, provider
//     y user_id sin crear un nuevo core.
//   - Entornos: "dev" usa consola con colores, "prod" usa JSON.
//   - Niveles: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Uso
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.Log.Env,
//	    Level: cfg.Log.Level,
//	})
//	defer logger.Sync()
//
// En services (con contexto):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login ok", logger.Provider("kakao"), logger.UserID(42))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("application started")
package logger
