package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"

	_ "github.com/eleven-am/transcribe-relay/docs"
	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/auth"
	"github.com/eleven-am/transcribe-relay/internal/batch"
	"github.com/eleven-am/transcribe-relay/internal/relay"
	"github.com/eleven-am/transcribe-relay/internal/session"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

type HandlerParams struct {
	fx.In

	RelayHandler   *relay.Handler
	BatchHandler   *batch.Handler
	APIKeyHandler  *apikey.Handler
	SessionHandler *session.Handler
	TokenHandler   *auth.Handler
	Validator      *auth.Validator
	Registry       *prometheus.Registry
	Config         *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	optionalAuth := apikey.Middleware(params.Validator, params.Config.RequireAPIKey)
	requiredAuth := apikey.Middleware(params.Validator, true)

	params.RelayHandler.RegisterRoutes(api, optionalAuth, apikey.RequireScope(shared.ScopeStream))
	params.BatchHandler.RegisterRoutes(api, optionalAuth, apikey.RequireScope(shared.ScopeBatch))

	apikeysGroup := api.Group("/apikeys")
	apikeysGroup.Use(requiredAuth)
	params.APIKeyHandler.RegisterRoutes(apikeysGroup)

	tokensGroup := api.Group("/tokens")
	tokensGroup.Use(requiredAuth)
	params.TokenHandler.RegisterRoutes(tokensGroup)

	sessionsGroup := api.Group("/sessions")
	sessionsGroup.Use(requiredAuth)
	params.SessionHandler.RegisterRoutes(sessionsGroup)

	registerOpsRoutes(e, params.Registry)
}

func registerOpsRoutes(e *echo.Echo, reg *prometheus.Registry) {
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
}

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

func ProvideAPIKeyHandler(store *apikey.Store, logger *slog.Logger) *apikey.Handler {
	return apikey.NewHandler(store, logger.With("handler", "apikey"))
}

func ProvideTokenService(cfg *Config, logger *slog.Logger) (*auth.TokenService, error) {
	if cfg.TokenSecret == "" {
		logger.Warn("TOKEN_SECRET is not set, relay tokens will only be valid on this instance")
	}
	return auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
}

func ProvideValidator(store *apikey.Store, tokens *auth.TokenService) *auth.Validator {
	return auth.NewValidator(store, tokens)
}

func ProvideTokenHandler(tokens *auth.TokenService, logger *slog.Logger) *auth.Handler {
	return auth.NewHandler(tokens, logger.With("handler", "token"))
}

func ProvideSessionHandler(store *session.Store, logger *slog.Logger) *session.Handler {
	return session.NewHandler(store, logger.With("handler", "session"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideAPIKeyHandler,
		ProvideTokenService,
		ProvideValidator,
		ProvideTokenHandler,
		ProvideSessionHandler,
	),
	fx.Invoke(RegisterRoutes),
)
