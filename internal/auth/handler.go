package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/dto"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

type Handler struct {
	tokens *TokenService
	logger *slog.Logger
}

func NewHandler(tokens *TokenService, logger *slog.Logger) *Handler {
	return &Handler{
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
}

// Create godoc
// @Summary      Mint a short-lived relay token
// @Description  Exchanges the caller's API key for a signed token that can be passed as api_key on the relay URL. The token never outlives the key and cannot carry the admin scope.
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateTokenRequest  false  "Token grants"
// @Success      201      {object}  dto.TokenResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Failure      403      {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /tokens [post]
func (h *Handler) Create(c echo.Context) error {
	key := apikey.FromContext(c)
	if key == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	var req dto.CreateTokenRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return shared.BadRequest("invalid_request", "invalid request body")
		}
	}
	if req.TTLSeconds < 0 {
		return shared.BadRequest("invalid_ttl", "ttl_seconds must be positive")
	}

	token, claims, err := h.tokens.Issue(key, IssueRequest{
		TTL:       time.Duration(req.TTLSeconds) * time.Second,
		Scopes:    req.Scopes,
		Providers: req.Providers,
	})
	if err != nil {
		if errors.Is(err, ErrNoGrant) {
			return shared.Forbidden("insufficient_scope", err.Error())
		}
		h.logger.Error("failed to issue token", "error", err, "key_id", key.ID)
		return shared.InternalError("token_failed", "failed to issue token")
	}

	h.logger.Info("token issued", "key_id", key.ID, "token_id", claims.ID, "expires_at", claims.ExpiresAt.Time)
	return c.JSON(http.StatusCreated, dto.TokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		Scopes:    claims.Scopes,
		Providers: claims.Providers,
	})
}
