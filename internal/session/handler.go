package session

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
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
	g.GET("/active", h.Active)
	g.GET("/:id", h.Get)
	g.GET("/metrics/:provider", h.GetMetrics)
	g.GET("/metrics/:provider/summary", h.GetSummary)
}

func requireKey(c echo.Context) (*apikey.APIKey, error) {
	key := apikey.FromContext(c)
	if key == nil {
		return nil, shared.Unauthorized("auth_required", "authentication required")
	}
	return key, nil
}

func requireAdmin(c echo.Context) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}
	if !key.HasScope(shared.ScopeAdmin) {
		return shared.Forbidden("insufficient_scope", "admin scope required")
	}
	return nil
}

func sessionToResponse(s *Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:          s.ID,
		Provider:    s.Provider,
		OwnerID:     s.OwnerID,
		Status:      string(s.Status),
		CloseCode:   s.CloseCode,
		CloseReason: s.CloseReason,
		StartedAt:   s.StartedAt.Format(time.RFC3339),
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.Format(time.RFC3339)
		resp.EndedAt = &ended
		resp.DurationMs = s.Duration().Milliseconds()
	}
	return resp
}

func sessionsToResponse(sessions []*Session) dto.SessionListResponse {
	out := make([]dto.SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = sessionToResponse(s)
	}
	return dto.SessionListResponse{Sessions: out}
}

func metricsToResponse(m *Metrics) dto.MetricsResponse {
	return dto.MetricsResponse{
		Provider:      m.Provider,
		Date:          m.Date,
		Hour:          m.Hour,
		Sessions:      m.Sessions,
		Closed:        m.Closed,
		ErrorCount:    m.ErrorCount,
		AvgDurationMs: m.AvgDurationMs,
		CloseReasons:  m.CloseReasons,
	}
}

// List godoc
// @Summary      List recent relay sessions
// @Description  Returns the most recent relay sessions of the caller's owner. Admin keys may pass owner_id.
// @Tags         sessions
// @Produce      json
// @Param        owner_id  query     string  false  "Owner to list (admin only)"
// @Success      200       {object}  dto.SessionListResponse
// @Failure      401       {object}  shared.APIError
// @Failure      403       {object}  shared.APIError
// @Failure      500       {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /sessions [get]
func (h *Handler) List(c echo.Context) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}

	ownerID := key.OwnerID
	if requested := c.QueryParam("owner_id"); requested != "" && requested != ownerID {
		if !key.HasScope(shared.ScopeAdmin) {
			return shared.Forbidden("not_owner", "cannot list another owner's sessions")
		}
		ownerID = requested
	}

	sessions, err := h.store.GetOwnerSessions(c.Request().Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err, "owner_id", ownerID)
		return shared.InternalError("list_failed", "failed to list sessions")
	}

	return c.JSON(http.StatusOK, sessionsToResponse(sessions))
}

// Active godoc
// @Summary      List active relay sessions
// @Tags         sessions
// @Produce      json
// @Success      200  {object}  dto.SessionListResponse
// @Failure      401  {object}  shared.APIError
// @Failure      403  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /sessions/active [get]
func (h *Handler) Active(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	sessions, err := h.store.GetActiveSessions(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list active sessions", "error", err)
		return shared.InternalError("list_failed", "failed to list sessions")
	}

	return c.JSON(http.StatusOK, sessionsToResponse(sessions))
}

// Get godoc
// @Summary      Get a relay session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  shared.APIError
// @Failure      403  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /sessions/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}

	sess, err := h.store.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("session_not_found", "session not found")
		}
		h.logger.Error("failed to get session", "error", err)
		return shared.InternalError("get_failed", "failed to get session")
	}

	if sess.OwnerID != key.OwnerID && !key.HasScope(shared.ScopeAdmin) {
		return shared.Forbidden("not_owner", "you don't own this session")
	}

	return c.JSON(http.StatusOK, sessionToResponse(sess))
}

func parseProvider(c echo.Context) (string, error) {
	name, err := provider.Parse(c.Param("provider"), "")
	if err != nil || name == "" {
		return "", shared.BadRequest("unknown_provider", "unknown provider")
	}
	return string(name), nil
}

// GetMetrics godoc
// @Summary      Hourly relay metrics for a provider
// @Tags         sessions
// @Produce      json
// @Param        provider  path      string  true   "Provider name"
// @Param        hours     query     int     false  "Hours to look back (1-168)"
// @Success      200       {object}  dto.MetricsListResponse
// @Failure      400       {object}  shared.APIError
// @Failure      401       {object}  shared.APIError
// @Failure      403       {object}  shared.APIError
// @Failure      500       {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /sessions/metrics/{provider} [get]
func (h *Handler) GetMetrics(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	name, err := parseProvider(c)
	if err != nil {
		return err
	}

	hours := 24
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		if hr, err := strconv.Atoi(hoursStr); err == nil && hr > 0 && hr <= 168 {
			hours = hr
		}
	}

	metrics, err := h.store.GetMetrics(c.Request().Context(), name, hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err, "provider", name)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}

	response := make([]dto.MetricsResponse, len(metrics))
	for i, m := range metrics {
		response[i] = metricsToResponse(m)
	}

	return c.JSON(http.StatusOK, dto.MetricsListResponse{
		Provider: name,
		Hours:    hours,
		Metrics:  response,
	})
}

// GetSummary godoc
// @Summary      Seven day relay summary for a provider
// @Tags         sessions
// @Produce      json
// @Param        provider  path      string  true  "Provider name"
// @Success      200       {object}  dto.SummaryResponse
// @Failure      400       {object}  shared.APIError
// @Failure      401       {object}  shared.APIError
// @Failure      403       {object}  shared.APIError
// @Failure      500       {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /sessions/metrics/{provider}/summary [get]
func (h *Handler) GetSummary(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	name, err := parseProvider(c)
	if err != nil {
		return err
	}

	metrics, err := h.store.GetMetricsForLast7Days(c.Request().Context(), name)
	if err != nil {
		h.logger.Error("failed to get metrics summary", "error", err, "provider", name)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}

	summary := dto.SummaryResponse{
		Provider: name,
		Period:   "7d",
	}

	var totalDuration, finished, errorCount int64
	for _, m := range metrics {
		summary.TotalSessions += m.Sessions
		errorCount += m.ErrorCount
		n := m.Closed + m.ErrorCount
		finished += n
		totalDuration += m.AvgDurationMs * n

		for reason, count := range m.CloseReasons {
			if summary.CloseReasons == nil {
				summary.CloseReasons = make(map[string]int64)
			}
			summary.CloseReasons[reason] += count
		}
	}

	if finished > 0 {
		summary.AvgDurationMs = totalDuration / finished
		summary.ErrorRate = float64(errorCount) / float64(finished) * 100
	}

	return c.JSON(http.StatusOK, summary)
}
