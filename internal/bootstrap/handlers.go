package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/peergrade/internal/gateway"
	"github.com/eleven-am/peergrade/internal/health"
	"github.com/eleven-am/peergrade/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const version = "1.0.0"

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideStore(cfg *Config) *session.Store {
	return session.NewStore(cfg.SessionName)
}

func ProvideRegistry() *session.Registry {
	return session.NewRegistry()
}

func ProvideSessionHandler(store *session.Store, logger *slog.Logger) *session.Handler {
	return session.NewHandler(store, logger.With("handler", "session"))
}

func ProvideHealthHandler(store *session.Store, hub *gateway.Hub) *health.Handler {
	return health.NewHandler(store, hub, version)
}

type HandlerParams struct {
	fx.In

	SessionHandler *session.Handler
	HealthHandler  *health.Handler
	WSServer       *gateway.WSServer
	Config         *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	params.WSServer.RegisterRoutes(e)
	params.SessionHandler.RegisterRoutes(e)
	params.HealthHandler.RegisterRoutes(e)

	e.Static("/assets", params.Config.StaticDir)
	e.GET("/*", func(c echo.Context) error {
		return c.File(params.Config.IndexHTML)
	})
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideStore,
		ProvideRegistry,
		ProvideSessionHandler,
		ProvideHealthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
