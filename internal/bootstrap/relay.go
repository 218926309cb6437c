package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/eleven-am/transcribe-relay/internal/batch"
	"github.com/eleven-am/transcribe-relay/internal/metrics"
	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/relay"
	"github.com/eleven-am/transcribe-relay/internal/session"
)

func ProvideCredentials(cfg *Config) provider.Credentials {
	return provider.Credentials{
		DeepgramAPIKey:   cfg.DeepgramAPIKey,
		AssemblyAIAPIKey: cfg.AssemblyAIAPIKey,
		SonioxAPIKey:     cfg.SonioxAPIKey,
	}
}

func ProvideDefaultProvider(cfg *Config) (provider.Name, error) {
	return provider.Parse(cfg.DefaultProvider, provider.Deepgram)
}

func ProvideRegistry() *relay.Registry {
	return relay.NewRegistry()
}

func ProvideUpstreamDialer() relay.UpstreamDialer {
	return relay.NewWebsocketDialer(relay.WebsocketDialerConfig{})
}

func ProvideRelayHandler(
	cfg *Config,
	creds provider.Credentials,
	defaultProvider provider.Name,
	dialer relay.UpstreamDialer,
	registry *relay.Registry,
	sessions *session.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *relay.Handler {
	return relay.NewHandler(relay.HandlerConfig{
		Credentials:     creds,
		DefaultProvider: defaultProvider,
		ConnectTimeout:  cfg.UpstreamConnectTimeout,
		MaxPendingBytes: cfg.MaxPendingBytes,
		ClientBuffer:    cfg.ClientBufferSize,
	}, dialer, registry, sessions, m, logger.With("handler", "relay"))
}

func ProvideBatchHandler(
	cfg *Config,
	creds provider.Credentials,
	defaultProvider provider.Name,
	jobs *batch.JobStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) *batch.Handler {
	poll := batch.PollConfig{
		Interval:    cfg.BatchPollInterval,
		MaxAttempts: cfg.BatchMaxPollAttempts,
	}
	options := make(map[provider.Name]batch.Options)
	for _, name := range provider.Names() {
		options[name] = batch.Options{Poll: poll}
	}

	return batch.NewHandler(batch.HandlerConfig{
		Credentials:     creds,
		Options:         options,
		DefaultProvider: defaultProvider,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		RequestTimeout:  cfg.BatchRequestTimeout,
	}, jobs, m, logger.With("handler", "batch"))
}

// CloseRelaysOnStop closes live relays with 1001 before the HTTP server
// shuts down, so clients and vendors see a clean going-away close.
func CloseRelaysOnStop(lc fx.Lifecycle, registry *relay.Registry, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if n := registry.CloseAll(1001, relay.ReasonServerShutdown); n > 0 {
				logger.Info("closed live relays", "count", n)
			}
			return nil
		},
	})
}

var RelayModule = fx.Options(
	fx.Provide(
		ProvideCredentials,
		ProvideDefaultProvider,
		ProvideRegistry,
		ProvideUpstreamDialer,
		ProvideRelayHandler,
		ProvideBatchHandler,
	),
	fx.Invoke(CloseRelaysOnStop),
)
