package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionRecorder persists the lifecycle of relay sessions. Errors are
// logged and never affect the relay.
type SessionRecorder interface {
	Start(ctx context.Context, id string, name provider.Name, ownerID string) error
	End(ctx context.Context, id string, code int, reason string) error
}

type HandlerConfig struct {
	Credentials     provider.Credentials
	ProviderOptions map[provider.Name]provider.Options
	DefaultProvider provider.Name
	ConnectTimeout  time.Duration
	MaxPendingBytes int
	ClientBuffer    int
}

type Handler struct {
	cfg      HandlerConfig
	dialer   UpstreamDialer
	registry *Registry
	sessions SessionRecorder
	observer Observer
	logger   *slog.Logger
}

func NewHandler(cfg HandlerConfig, dialer UpstreamDialer, registry *Registry, sessions SessionRecorder, observer Observer, logger *slog.Logger) *Handler {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = provider.Deepgram
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Handler{
		cfg:      cfg,
		dialer:   dialer,
		registry: registry,
		sessions: sessions,
		observer: observer,
		logger:   logger,
	}
}

// RegisterRoutes mounts the relay endpoint behind m. Keys restricted to
// other vendors are rejected before the upgrade.
func (h *Handler) RegisterRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	chain := append([]echo.MiddlewareFunc{}, m...)
	chain = append(chain, apikey.RequireProvider(provider.SelectorParam, string(h.cfg.DefaultProvider)))
	g.GET("/listen", h.Listen, chain...)
}

// Listen godoc
// @Summary      Relay live audio to a speech-to-text vendor
// @Description  Upgrades to a WebSocket and relays frames to the selected vendor. Query parameters other than provider are forwarded upstream.
// @Tags         relay
// @Param        provider  query  string  false  "deepgram, assemblyai or soniox"
// @Success      101  "Switching Protocols"
// @Failure      400  {object}  shared.APIError
// @Failure      401  {object}  shared.APIError
// @Failure      502  {object}  shared.APIError
// @Failure      503  {object}  shared.APIError
// @Failure      504  {object}  shared.APIError
// @Router       /listen [get]
func (h *Handler) Listen(c echo.Context) error {
	name, err := provider.Parse(c.QueryParam(provider.SelectorParam), h.cfg.DefaultProvider)
	if err != nil {
		return shared.BadRequest("unknown_provider", err.Error())
	}

	adapter, err := provider.New(name, h.cfg.Credentials, h.cfg.ProviderOptions[name])
	if err != nil {
		if errors.Is(err, provider.ErrMissingCredentials) {
			return shared.ServiceUnavailable("provider_not_configured", err.Error())
		}
		return shared.BadRequest("unknown_provider", err.Error())
	}

	var ownerID string
	if key := apikey.FromContext(c); key != nil {
		ownerID = key.OwnerID
	}

	id := uuid.NewString()
	logger := h.logger.With("connection_id", id, "provider", string(name))

	conn := NewConnection(adapter, c.Request().URL, Config{
		ID:              id,
		MaxPendingBytes: h.cfg.MaxPendingBytes,
		Dialer:          h.dialer,
		Observer:        h.observer,
		Logger:          h.logger,
	})

	if err := conn.Preconnect(c.Request().Context(), h.cfg.ConnectTimeout); err != nil {
		logger.Warn("upstream preconnect failed", "error", err)
		if errors.Is(err, ErrConnectTimeout) {
			return shared.GatewayTimeout(ReasonUpstreamConnectTimeout, "upstream did not become ready in time")
		}
		return shared.BadGateway(ReasonUpstreamConnectFailed, "failed to connect to upstream provider")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		conn.Close(DefaultCloseCode, ReasonClientClosed)
		return nil
	}

	client := NewWebsocketClient(ws, h.cfg.ClientBuffer, logger)
	client.SetDrainHandler(conn.OnClientDrain)
	go client.WritePump()

	h.registry.Add(conn, ownerID)
	defer h.registry.Remove(id)
	h.recordStart(id, name, ownerID, logger)

	logger.Info("relay session started", "owner_id", ownerID)

	conn.Initialize(client)
	code := client.ReadPump(conn.SendToUpstream)
	conn.Close(code, ReasonClientClosed)

	closeCode, reason := conn.CloseStatus()
	h.recordEnd(id, closeCode, reason, logger)

	logger.Info("relay session ended", "code", closeCode, "reason", reason)
	return nil
}

func (h *Handler) recordStart(id string, name provider.Name, ownerID string, logger *slog.Logger) {
	if h.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.sessions.Start(ctx, id, name, ownerID); err != nil {
		logger.Error("failed to record session start", "error", err)
	}
}

func (h *Handler) recordEnd(id string, code int, reason string, logger *slog.Logger) {
	if h.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.sessions.End(ctx, id, code, reason); err != nil {
		logger.Error("failed to record session end", "error", err)
	}
}
