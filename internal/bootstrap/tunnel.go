package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/peergrade/internal/gateway"
	"github.com/eleven-am/peergrade/internal/tunnel"
	"go.uber.org/fx"
)

func ProvideShortener(cfg *Config, logger *slog.Logger) *tunnel.Shortener {
	return tunnel.NewShortener(cfg.ShortenerURL, logger)
}

func ProvideTunnelProvider(cfg *Config, shortener *tunnel.Shortener, hub *gateway.Hub, logger *slog.Logger) *tunnel.Provider {
	return tunnel.NewProvider(tunnel.Config{
		Enabled:      cfg.TunnelEnabled,
		Target:       cfg.TunnelTarget,
		LocalAddr:    cfg.TunnelLocalAddr,
		RestartDelay: cfg.TunnelRestartDelay,
		LocalURL:     cfg.LocalURL,
	}, shortener, hub, logger)
}

func StartTunnel(lc fx.Lifecycle, provider *tunnel.Provider) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go provider.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var TunnelModule = fx.Options(
	fx.Provide(
		ProvideShortener,
		ProvideTunnelProvider,
	),
	fx.Invoke(StartTunnel),
)
