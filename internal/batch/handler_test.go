package batch

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/dto"
	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

type fakeTranscriber struct {
	name     provider.Name
	err      error
	statuses []Status
	got      Request
}

func (f *fakeTranscriber) Name() provider.Name {
	return f.name
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req Request) (*Response, error) {
	f.got = req
	for i, s := range f.statuses {
		req.report(s, "ext_1", i)
	}
	if f.err != nil {
		return nil, f.err
	}
	return singleChannel("ok", 1, nil, nil), nil
}

type fakeObserver struct {
	mu       sync.Mutex
	polls    int
	finished []Status
}

func (o *fakeObserver) JobPolled(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls++
}

func (o *fakeObserver) JobFinished(_ string, status Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, status)
}

func newTestBatchHandler(t *testing.T, fake *fakeTranscriber) (*Handler, *JobStore, *fakeObserver) {
	store := setupTestJobStore(t)
	observer := &fakeObserver{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(HandlerConfig{MaxUploadBytes: 64}, store, observer, logger)
	if fake != nil {
		h.transcribers[fake.name] = fake
	}
	return h, store, observer
}

func newBatchContext(method, target string, body io.Reader, contentType string, key *apikey.APIKey) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if key != nil {
		apikey.SetContext(c, key)
	}
	return c, rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return httpErr.Code
}

func TestBatchHandler_RegisterRoutes(t *testing.T) {
	h, _, _ := newTestBatchHandler(t, nil)
	e := echo.New()
	h.RegisterRoutes(e.Group("/v1"))

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{"POST /v1/transcribe", "GET /v1/jobs", "GET /v1/jobs/:id"} {
		if !routes[want] {
			t.Errorf("expected route %s", want)
		}
	}
}

func TestBatchHandler_RegisterRoutes_ProviderRestriction(t *testing.T) {
	fake := &fakeTranscriber{name: provider.Soniox}
	h, _, _ := newTestBatchHandler(t, fake)
	withKey := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apikey.SetContext(c, &apikey.APIKey{OwnerID: "acme", Providers: shared.StringSlice{"deepgram"}})
			return next(c)
		}
	}
	e := echo.New()
	h.RegisterRoutes(e.Group("/v1"), withKey)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/transcribe?provider=soniox", strings.NewReader("pcm")))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("job listing should not be provider restricted, got %d", rec.Code)
	}
}

func TestBatchHandler_NoCredentials(t *testing.T) {
	h, _, _ := newTestBatchHandler(t, nil)
	if len(h.transcribers) != 0 {
		t.Fatalf("expected no transcribers without credentials, got %d", len(h.transcribers))
	}

	c, _ := newBatchContext(http.MethodPost, "/v1/transcribe?provider=soniox", strings.NewReader("pcm"), "", nil)
	if err := h.Transcribe(c); err == nil || httpStatus(t, err) != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
}

func TestBatchHandler_Transcribe_RawBody(t *testing.T) {
	fake := &fakeTranscriber{name: provider.Deepgram, statuses: []Status{StatusUploading, StatusProcessing, StatusProcessing}}
	h, store, observer := newTestBatchHandler(t, fake)
	key := &apikey.APIKey{OwnerID: "acme"}

	c, rec := newBatchContext(http.MethodPost, "/v1/transcribe?language=en&keyword=relay&model=nova-2", strings.NewReader("pcm"), "audio/wav", key)
	if err := h.Transcribe(c); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Transcript() != "ok" {
		t.Errorf("unexpected transcript %q", resp.Transcript())
	}

	if string(fake.got.Audio) != "pcm" || fake.got.ContentType != "audio/wav" || fake.got.Model != "nova-2" {
		t.Errorf("unexpected request %+v", fake.got)
	}
	if len(fake.got.Languages) != 1 || fake.got.Keywords[0] != "relay" {
		t.Errorf("unexpected hints %v %v", fake.got.Languages, fake.got.Keywords)
	}

	jobID := rec.Header().Get("X-Job-ID")
	job, err := store.GetByID(context.Background(), jobID)
	if err != nil {
		t.Fatalf("job should be recorded: %v", err)
	}
	if job.Status != StatusCompleted || job.OwnerID != "acme" || job.ExternalID != "ext_1" || job.AudioBytes != 3 {
		t.Errorf("unexpected job %+v", job)
	}

	if observer.polls != 2 {
		t.Errorf("expected 2 polls observed, got %d", observer.polls)
	}
	if len(observer.finished) != 1 || observer.finished[0] != StatusCompleted {
		t.Errorf("unexpected finished %v", observer.finished)
	}
}

func TestBatchHandler_Transcribe_Multipart(t *testing.T) {
	fake := &fakeTranscriber{name: provider.Soniox}
	h, _, _ := newTestBatchHandler(t, fake)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, _ := form.CreateFormFile("file", "meeting.wav")
	_, _ = part.Write([]byte("wav-data"))
	_ = form.Close()

	c, _ := newBatchContext(http.MethodPost, "/v1/transcribe?provider=soniox", &body, form.FormDataContentType(), nil)
	if err := h.Transcribe(c); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if string(fake.got.Audio) != "wav-data" || fake.got.FileName != "meeting.wav" {
		t.Errorf("unexpected request %+v", fake.got)
	}
}

func tinyWAV() []byte {
	buf := make([]byte, 64)
	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], 56)
	copy(buf[8:], "WAVEfmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], 1)
	binary.LittleEndian.PutUint32(buf[24:], 8000)
	binary.LittleEndian.PutUint32(buf[28:], 16000)
	binary.LittleEndian.PutUint16(buf[32:], 2)
	binary.LittleEndian.PutUint16(buf[34:], 16)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], 20)
	return buf
}

func TestBatchHandler_Transcribe_SniffsGenericUpload(t *testing.T) {
	fake := &fakeTranscriber{name: provider.Soniox}
	h, store, _ := newTestBatchHandler(t, fake)

	c, rec := newBatchContext(http.MethodPost, "/v1/transcribe?provider=soniox", bytes.NewReader(tinyWAV()), echo.MIMEOctetStream, nil)
	if err := h.Transcribe(c); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if fake.got.ContentType != "audio/wav" || fake.got.FileName != "audio.wav" {
		t.Errorf("expected sniffed wav, got %q %q", fake.got.ContentType, fake.got.FileName)
	}

	job, err := store.GetByID(context.Background(), rec.Header().Get("X-Job-ID"))
	if err != nil {
		t.Fatalf("job should be recorded: %v", err)
	}
	if job.AudioFormat != "audio/wav" {
		t.Errorf("unexpected job format %q", job.AudioFormat)
	}
}

func TestBatchHandler_Transcribe_TextFormat(t *testing.T) {
	fake := &fakeTranscriber{name: provider.Deepgram}
	h, _, _ := newTestBatchHandler(t, fake)

	c, rec := newBatchContext(http.MethodPost, "/v1/transcribe?response_format=text", strings.NewReader("pcm"), "audio/wav", nil)
	if err := h.Transcribe(c); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("expected plain transcript, got %q", rec.Body.String())
	}
}

func TestBatchHandler_Transcribe_InputErrors(t *testing.T) {
	fake := &fakeTranscriber{name: provider.Deepgram}
	h, _, _ := newTestBatchHandler(t, fake)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown provider", "/v1/transcribe?provider=whisper", "pcm", http.StatusBadRequest},
		{"empty body", "/v1/transcribe", "", http.StatusBadRequest},
		{"too large", "/v1/transcribe", strings.Repeat("a", 65), http.StatusRequestEntityTooLarge},
		{"bad language", "/v1/transcribe?language=e", "pcm", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newBatchContext(http.MethodPost, tt.target, strings.NewReader(tt.body), "", nil)
			err := h.Transcribe(c)
			if err == nil || httpStatus(t, err) != tt.status {
				t.Errorf("expected %d, got %v", tt.status, err)
			}
		})
	}
}

func TestBatchHandler_Transcribe_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		jobStatus Status
	}{
		{"poll timeout", ErrPollTimeout, http.StatusGatewayTimeout, StatusTimedOut},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, StatusTimedOut},
		{"vendor error", &VendorError{Provider: provider.AssemblyAI, Message: "bad audio"}, http.StatusBadGateway, StatusError},
		{"status error", &HTTPStatusError{Provider: provider.AssemblyAI, StatusCode: 401}, http.StatusBadGateway, StatusError},
		{"other", io.ErrUnexpectedEOF, http.StatusInternalServerError, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTranscriber{name: provider.AssemblyAI, err: tt.err}
			h, store, _ := newTestBatchHandler(t, fake)

			c, rec := newBatchContext(http.MethodPost, "/v1/transcribe?provider=assemblyai", strings.NewReader("pcm"), "", nil)
			err := h.Transcribe(c)
			if err == nil || httpStatus(t, err) != tt.status {
				t.Fatalf("expected %d, got %v", tt.status, err)
			}

			job, err := store.GetByID(context.Background(), rec.Header().Get("X-Job-ID"))
			if err != nil {
				t.Fatalf("job should be recorded: %v", err)
			}
			if job.Status != tt.jobStatus || job.Error == "" {
				t.Errorf("unexpected job %+v", job)
			}
		})
	}
}

func TestBatchHandler_AssemblyAIEndToEnd(t *testing.T) {
	vendor := &assemblyAIVendor{pending: 1, finalStatus: "completed"}
	srv := httptest.NewServer(vendor.handler(t))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(HandlerConfig{
		Credentials:     provider.Credentials{AssemblyAIAPIKey: "aai-key"},
		Options:         map[provider.Name]Options{provider.AssemblyAI: {BaseURL: srv.URL, Poll: fastPoll}},
		DefaultProvider: provider.AssemblyAI,
	}, setupTestJobStore(t), nil, logger)

	e := echo.New()
	h.RegisterRoutes(e.Group("/v1"))
	req := httptest.NewRequest(http.MethodPost, "/v1/transcribe", strings.NewReader("audio-bytes"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Transcript() != "Hello world." {
		t.Errorf("unexpected transcript %q", resp.Transcript())
	}
}

func TestBatchHandler_GetJob(t *testing.T) {
	h, store, _ := newTestBatchHandler(t, nil)
	ctx := context.Background()
	job := &Job{Provider: "deepgram", OwnerID: "acme"}
	_ = store.Create(ctx, job)
	_ = store.Transition(ctx, job.ID, StatusCompleted, "dg_1", 0, "")

	tests := []struct {
		name   string
		id     string
		key    *apikey.APIKey
		status int
	}{
		{"anonymous", job.ID, nil, http.StatusUnauthorized},
		{"owner", job.ID, &apikey.APIKey{OwnerID: "acme"}, http.StatusOK},
		{"admin", job.ID, &apikey.APIKey{OwnerID: "ops", Scopes: shared.StringSlice{"admin"}}, http.StatusOK},
		{"stranger", job.ID, &apikey.APIKey{OwnerID: "other"}, http.StatusForbidden},
		{"missing", "job_missing", &apikey.APIKey{OwnerID: "acme"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newBatchContext(http.MethodGet, "/v1/jobs/"+tt.id, nil, "", tt.key)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			err := h.GetJob(c)
			if tt.status != http.StatusOK {
				if err == nil || httpStatus(t, err) != tt.status {
					t.Errorf("expected %d, got %v", tt.status, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetJob() error = %v", err)
			}
			var resp dto.JobResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Status != "completed" || resp.ExternalID != "dg_1" || resp.CompletedAt == nil {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestBatchHandler_ListJobs(t *testing.T) {
	h, store, _ := newTestBatchHandler(t, nil)
	ctx := context.Background()
	_ = store.Create(ctx, &Job{Provider: "deepgram", OwnerID: "acme"})
	_ = store.Create(ctx, &Job{Provider: "soniox", OwnerID: "other"})

	c, rec := newBatchContext(http.MethodGet, "/v1/jobs", nil, "", &apikey.APIKey{OwnerID: "acme"})
	if err := h.ListJobs(c); err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	var resp dto.JobListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Jobs) != 1 || resp.Jobs[0].Provider != "deepgram" {
		t.Errorf("unexpected jobs %+v", resp.Jobs)
	}
}

func TestBatchHandler_JobsDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(HandlerConfig{}, nil, nil, logger)

	c, _ := newBatchContext(http.MethodGet, "/v1/jobs", nil, "", &apikey.APIKey{OwnerID: "acme"})
	if err := h.ListJobs(c); err == nil || httpStatus(t, err) != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
}
