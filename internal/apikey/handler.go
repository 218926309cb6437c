package apikey

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/dto"
	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) requireAdmin(c echo.Context) (*APIKey, error) {
	key := FromContext(c)
	if key == nil {
		return nil, shared.Unauthorized("auth_required", "authentication required")
	}
	if !key.HasScope(shared.ScopeAdmin) {
		return nil, shared.Forbidden("insufficient_scope", "admin scope required")
	}
	return key, nil
}

func keyToResponse(k *APIKey) dto.APIKeyResponse {
	resp := dto.APIKeyResponse{
		ID:        k.ID,
		OwnerID:   k.OwnerID,
		Name:      k.Name,
		Prefix:    k.Prefix,
		Scopes:    []string(k.Scopes),
		Providers: []string(k.Providers),
		CreatedAt: k.CreatedAt.Format(time.RFC3339),
	}

	if k.ExpiresAt != nil {
		expiresAt := k.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expiresAt
	}

	if k.LastUsedAt != nil {
		lastUsed := k.LastUsedAt.Format(time.RFC3339)
		resp.LastUsed = &lastUsed
	}

	return resp
}

// List godoc
// @Summary      List API keys
// @Description  Returns the API keys of an owner, defaulting to the caller's owner
// @Tags         apikeys
// @Produce      json
// @Param        owner_id  query     string  false  "Owner to list"
// @Success      200       {object}  dto.APIKeyListResponse
// @Failure      401       {object}  shared.APIError
// @Failure      403       {object}  shared.APIError
// @Failure      500       {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /apikeys [get]
func (h *Handler) List(c echo.Context) error {
	caller, err := h.requireAdmin(c)
	if err != nil {
		return err
	}

	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		ownerID = caller.OwnerID
	}

	keys, err := h.store.GetByOwner(c.Request().Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to list API keys", "error", err, "owner_id", ownerID)
		return shared.InternalError("list_failed", "failed to list API keys")
	}

	response := make([]dto.APIKeyResponse, len(keys))
	for i, k := range keys {
		response[i] = keyToResponse(k)
	}

	return c.JSON(http.StatusOK, dto.APIKeyListResponse{APIKeys: response})
}

// Create godoc
// @Summary      Create an API key
// @Description  Creates a key with the given scopes and provider restrictions. The secret is only returned once.
// @Tags         apikeys
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateAPIKeyRequest  true  "API key details"
// @Success      201      {object}  dto.CreateAPIKeyResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Failure      403      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /apikeys [post]
func (h *Handler) Create(c echo.Context) error {
	caller, err := h.requireAdmin(c)
	if err != nil {
		return err
	}

	var req dto.CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	if req.Name == "" {
		return shared.BadRequest("missing_name", "name is required")
	}

	for _, s := range req.Scopes {
		if !shared.Scope(s).Valid() {
			return shared.BadRequest("invalid_scope", "unknown scope "+s)
		}
	}

	providers := make(shared.StringSlice, 0, len(req.Providers))
	for _, p := range req.Providers {
		name, err := provider.Parse(p, "")
		if err != nil || name == "" {
			return shared.BadRequest("invalid_provider", "unknown provider "+p)
		}
		providers = append(providers, string(name))
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = caller.OwnerID
	}

	key := &APIKey{
		OwnerID:   ownerID,
		Name:      req.Name,
		Scopes:    shared.StringSlice(req.Scopes),
		Providers: providers,
	}

	if req.ExpiresIn != nil && *req.ExpiresIn > 0 {
		expiresAt := time.Now().AddDate(0, 0, *req.ExpiresIn)
		key.ExpiresAt = &expiresAt
	}

	secret, err := h.store.Create(c.Request().Context(), key)
	if err != nil {
		h.logger.Error("failed to create API key", "error", err, "owner_id", ownerID)
		return shared.InternalError("create_failed", "failed to create API key")
	}

	return c.JSON(http.StatusCreated, dto.CreateAPIKeyResponse{
		APIKeyResponse: keyToResponse(key),
		Secret:         secret,
	})
}

// Delete godoc
// @Summary      Delete an API key
// @Tags         apikeys
// @Param        id  path  string  true  "API Key ID"
// @Success      204  "No Content"
// @Failure      401  {object}  shared.APIError
// @Failure      403  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /apikeys/{id} [delete]
func (h *Handler) Delete(c echo.Context) error {
	caller, err := h.requireAdmin(c)
	if err != nil {
		return err
	}

	keyID := c.Param("id")
	if keyID == caller.ID {
		return shared.Conflict("self_delete", "cannot delete the key used for this request")
	}

	if err := h.store.Delete(c.Request().Context(), keyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("key_not_found", "API key not found")
		}
		h.logger.Error("failed to delete API key", "error", err, "key_id", keyID)
		return shared.InternalError("delete_failed", "failed to delete API key")
	}

	return c.NoContent(http.StatusNoContent)
}
