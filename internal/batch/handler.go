package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/audio"
	"github.com/eleven-am/transcribe-relay/internal/dto"
	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

const (
	DefaultMaxUploadBytes = 100 * 1024 * 1024
	defaultRequestTimeout = 15 * time.Minute
	jobIDHeader           = "X-Job-ID"
)

// Observer receives batch telemetry.
type Observer interface {
	JobPolled(provider string)
	JobFinished(provider string, status Status, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) JobPolled(string)                          {}
func (nopObserver) JobFinished(string, Status, time.Duration) {}

type HandlerConfig struct {
	Credentials     provider.Credentials
	Options         map[provider.Name]Options
	DefaultProvider provider.Name
	MaxUploadBytes  int64
	RequestTimeout  time.Duration
}

type Handler struct {
	cfg          HandlerConfig
	transcribers map[provider.Name]Transcriber
	jobs         *JobStore
	observer     Observer
	logger       *slog.Logger
}

// NewHandler builds a transcriber for every vendor that has credentials.
// Vendors without credentials answer 503.
func NewHandler(cfg HandlerConfig, jobs *JobStore, observer Observer, logger *slog.Logger) *Handler {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = provider.Deepgram
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}

	transcribers := make(map[provider.Name]Transcriber)
	for _, name := range provider.Names() {
		t, err := New(name, cfg.Credentials, cfg.Options[name])
		if err != nil {
			logger.Debug("batch provider disabled", "provider", name, "error", err)
			continue
		}
		transcribers[name] = t
	}

	return &Handler{
		cfg:          cfg,
		transcribers: transcribers,
		jobs:         jobs,
		observer:     observer,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	transcribe := append([]echo.MiddlewareFunc{}, m...)
	transcribe = append(transcribe, apikey.RequireProvider(provider.SelectorParam, string(h.cfg.DefaultProvider)))
	g.POST("/transcribe", h.Transcribe, transcribe...)
	g.GET("/jobs", h.ListJobs, m...)
	g.GET("/jobs/:id", h.GetJob, m...)
}

// Transcribe godoc
// @Summary      Transcribe a complete audio file
// @Description  Accepts raw audio or a multipart "file" field and returns the vendor-neutral transcript. The job id is returned in the X-Job-ID header.
// @Tags         batch
// @Accept       octet-stream
// @Accept       mpfd
// @Produce      json
// @Param        provider         query     string    false  "deepgram, assemblyai or soniox"
// @Param        language         query     []string  false  "Language hints"
// @Param        keyword          query     []string  false  "Key terms"
// @Param        model            query     string    false  "Vendor model override"
// @Param        response_format  query     string    false  "json (default) or text"
// @Success      200       {object}  Response
// @Failure      400       {object}  shared.APIError
// @Failure      401       {object}  shared.APIError
// @Failure      413       {object}  shared.APIError
// @Failure      502       {object}  shared.APIError
// @Failure      503       {object}  shared.APIError
// @Failure      504       {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /transcribe [post]
func (h *Handler) Transcribe(c echo.Context) error {
	name, err := provider.Parse(c.QueryParam(provider.SelectorParam), h.cfg.DefaultProvider)
	if err != nil {
		return shared.BadRequest("unknown_provider", err.Error())
	}
	transcriber, ok := h.transcribers[name]
	if !ok {
		return shared.ServiceUnavailable("provider_not_configured", fmt.Sprintf("%s is not configured", name))
	}

	req, err := h.readRequest(c)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return shared.BadRequest("invalid_request", err.Error())
	}

	var ownerID string
	if key := apikey.FromContext(c); key != nil {
		ownerID = key.OwnerID
	}

	format := describeAudio(&req)
	logger := h.logger.With("provider", string(name), "format", format.MIME)
	job := h.startJob(c.Request().Context(), name, ownerID, int64(len(req.Audio)), format, logger)
	if job != nil {
		logger = logger.With("job_id", job.ID)
		c.Response().Header().Set(jobIDHeader, job.ID)
	}

	tracker := &jobTracker{handler: h, job: job, provider: string(name), logger: logger}
	req.OnStatus = tracker.onStatus

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.cfg.RequestTimeout)
	defer cancel()

	started := time.Now()
	resp, err := transcriber.Transcribe(ctx, req)
	tracker.finish(err)
	h.observer.JobFinished(string(name), tracker.status, time.Since(started))

	if err != nil {
		logger.Warn("batch transcription failed", "error", err, "attempts", tracker.attempts)
		return transcribeError(err)
	}

	logger.Info("batch transcription completed", "attempts", tracker.attempts, "elapsed", time.Since(started))
	if c.QueryParam("response_format") == "text" {
		return c.String(http.StatusOK, resp.Transcript())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) readRequest(c echo.Context) (Request, error) {
	req := Request{
		Languages: c.QueryParams()["language"],
		Keywords:  c.QueryParams()["keyword"],
		Model:     c.QueryParam("model"),
	}

	var body io.Reader = c.Request().Body
	req.ContentType = c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(req.ContentType, echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return req, shared.BadRequest("missing_audio", "multipart body must carry a file field")
		}
		if fh.Size > h.cfg.MaxUploadBytes {
			return req, shared.PayloadTooLarge("audio_too_large", "audio exceeds the upload limit")
		}
		f, err := fh.Open()
		if err != nil {
			return req, shared.BadRequest("invalid_audio", "failed to open uploaded file")
		}
		defer f.Close()
		body = f
		req.FileName = fh.Filename
		req.ContentType = fh.Header.Get(echo.HeaderContentType)
	}

	data, err := io.ReadAll(io.LimitReader(body, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return req, shared.BadRequest("invalid_audio", "failed to read audio")
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return req, shared.PayloadTooLarge("audio_too_large", "audio exceeds the upload limit")
	}
	if len(data) == 0 {
		return req, shared.BadRequest("missing_audio", "request body is empty")
	}
	req.Audio = data
	return req, nil
}

// describeAudio fills in a content type and file name from the payload when
// the client sent a generic one.
func describeAudio(req *Request) audio.Format {
	format := audio.Inspect(req.Audio)
	if !format.IsMedia() {
		return format
	}
	if req.ContentType == "" || strings.HasPrefix(req.ContentType, echo.MIMEOctetStream) {
		req.ContentType = format.MIME
	}
	if req.FileName == "" {
		req.FileName = "audio" + format.Extension
	}
	return format
}

func transcribeError(err error) error {
	var vendorErr *VendorError
	var statusErr *HTTPStatusError
	switch {
	case errors.Is(err, ErrPollTimeout), errors.Is(err, context.DeadlineExceeded):
		return shared.GatewayTimeout("transcription_timeout", "transcription did not finish in time")
	case errors.Is(err, ErrInvalidRequest):
		return shared.BadRequest("invalid_request", err.Error())
	case errors.As(err, &vendorErr):
		return shared.BadGateway("transcription_failed", vendorErr.Message)
	case errors.As(err, &statusErr):
		return shared.BadGateway("upstream_status", fmt.Sprintf("provider returned status %d", statusErr.StatusCode))
	default:
		return shared.InternalError("transcription_failed", "transcription failed")
	}
}

func (h *Handler) startJob(ctx context.Context, name provider.Name, ownerID string, size int64, format audio.Format, logger *slog.Logger) *Job {
	if h.jobs == nil {
		return nil
	}
	job := &Job{
		OwnerID:         ownerID,
		Provider:        string(name),
		Status:          StatusUploading,
		AudioBytes:      size,
		AudioFormat:     format.MIME,
		AudioDurationMs: format.Duration.Milliseconds(),
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		logger.Error("failed to record batch job", "error", err)
		return nil
	}
	return job
}

// jobTracker mirrors transcriber progress into the job store. Terminal
// states are written once by finish so the error text can be stored.
type jobTracker struct {
	handler    *Handler
	job        *Job
	provider   string
	logger     *slog.Logger
	status     Status
	externalID string
	attempts   int
}

func (t *jobTracker) onStatus(status Status, externalID string, attempts int) {
	t.status = status
	if externalID != "" {
		t.externalID = externalID
	}
	t.attempts = attempts

	if status == StatusQueued || status == StatusProcessing {
		t.handler.observer.JobPolled(t.provider)
	}
	if status.Terminal() {
		return
	}
	t.persist(status, "")
}

func (t *jobTracker) finish(err error) {
	switch {
	case err == nil:
		t.status = StatusCompleted
	case errors.Is(err, ErrPollTimeout), errors.Is(err, context.DeadlineExceeded):
		t.status = StatusTimedOut
	default:
		t.status = StatusError
	}

	var msg string
	if err != nil {
		msg = err.Error()
	}
	t.persist(t.status, msg)
}

func (t *jobTracker) persist(status Status, errMsg string) {
	if t.job == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := t.handler.jobs.Transition(ctx, t.job.ID, status, t.externalID, t.attempts, errMsg); err != nil {
		t.logger.Error("failed to update batch job", "error", err, "status", status)
	}
}

func jobToResponse(j *Job) dto.JobResponse {
	resp := dto.JobResponse{
		ID:           j.ID,
		OwnerID:      j.OwnerID,
		Provider:     j.Provider,
		ExternalID:   j.ExternalID,
		Status:       string(j.Status),
		PollAttempts: j.PollAttempts,
		AudioBytes:   j.AudioBytes,
		AudioFormat:  j.AudioFormat,
		DurationMs:   j.AudioDurationMs,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt.Format(time.RFC3339),
	}
	if j.CompletedAt != nil {
		completed := j.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}

// ListJobs godoc
// @Summary      List recent batch jobs
// @Tags         batch
// @Produce      json
// @Param        limit  query     int  false  "Maximum jobs to return (1-100)"
// @Success      200    {object}  dto.JobListResponse
// @Failure      401    {object}  shared.APIError
// @Failure      503    {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /jobs [get]
func (h *Handler) ListJobs(c echo.Context) error {
	key := apikey.FromContext(c)
	if key == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}
	if h.jobs == nil {
		return shared.ServiceUnavailable("jobs_disabled", "job tracking is not configured")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	jobs, err := h.jobs.ListByOwner(c.Request().Context(), key.OwnerID, limit)
	if err != nil {
		h.logger.Error("failed to list batch jobs", "error", err)
		return shared.InternalError("list_failed", "failed to list jobs")
	}

	resp := dto.JobListResponse{Jobs: make([]dto.JobResponse, len(jobs))}
	for i, j := range jobs {
		resp.Jobs[i] = jobToResponse(j)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetJob godoc
// @Summary      Get a batch job
// @Tags         batch
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  dto.JobResponse
// @Failure      401  {object}  shared.APIError
// @Failure      403  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Failure      503  {object}  shared.APIError
// @Security     APIKeyAuth
// @Router       /jobs/{id} [get]
func (h *Handler) GetJob(c echo.Context) error {
	key := apikey.FromContext(c)
	if key == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}
	if h.jobs == nil {
		return shared.ServiceUnavailable("jobs_disabled", "job tracking is not configured")
	}

	job, err := h.jobs.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("job_not_found", "job not found")
		}
		h.logger.Error("failed to get batch job", "error", err)
		return shared.InternalError("get_failed", "failed to get job")
	}

	if job.OwnerID != key.OwnerID && !key.HasScope(shared.ScopeAdmin) {
		return shared.Forbidden("not_owner", "you don't own this job")
	}

	return c.JSON(http.StatusOK, jobToResponse(job))
}
