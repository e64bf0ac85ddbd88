package gateway

import (
	"log/slog"

	"github.com/eleven-am/peergrade/internal/session"
	"go.uber.org/fx"
)

func ProvideHub(store *session.Store, registry *session.Registry, logger *slog.Logger) *Hub {
	return NewHub(store, registry, logger)
}

func ProvideWSServer(hub *Hub, logger *slog.Logger) *WSServer {
	return NewWSServer(hub, logger)
}

var Module = fx.Options(
	fx.Provide(
		ProvideHub,
		ProvideWSServer,
	),
)
