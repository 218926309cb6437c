package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eleven-am/transcribe-relay/internal/provider"
)

const (
	DefaultPollInterval    = 3 * time.Second
	DefaultMaxPollAttempts = 200
	defaultHTTPTimeout     = 60 * time.Second
)

type Status string

const (
	StatusUploading  Status = "uploading"
	StatusSubmitted  Status = "submitted"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusTimedOut   Status = "timed_out"
)

// Terminal reports whether no further transitions can follow s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusTimedOut
}

var (
	ErrPollTimeout    = errors.New("transcription timed out")
	ErrInvalidRequest = errors.New("invalid transcription request")
)

// VendorError is a failure the vendor reported about the job itself.
type VendorError struct {
	Provider provider.Name
	Message  string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s transcription failed: %s", e.Provider, e.Message)
}

// HTTPStatusError is a non-2xx answer from a vendor endpoint.
type HTTPStatusError struct {
	Provider   provider.Name
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StatusFunc observes the lifecycle of one job. It is called from the
// goroutine running Transcribe.
type StatusFunc func(status Status, externalID string, attempts int)

type Request struct {
	Audio       []byte   `validate:"min=1"`
	ContentType string   `validate:"omitempty,max=128"`
	FileName    string   `validate:"omitempty,max=255"`
	Languages   []string `validate:"max=10,dive,min=2,max=16"`
	Keywords    []string `validate:"max=100,dive,min=1,max=64"`
	Model       string   `validate:"omitempty,max=64"`
	OnStatus    StatusFunc
}

func (r Request) report(status Status, externalID string, attempts int) {
	if r.OnStatus != nil {
		r.OnStatus(status, externalID, attempts)
	}
}

func reportFailure(req Request, externalID string, attempts int, err error) error {
	if errors.Is(err, ErrPollTimeout) {
		req.report(StatusTimedOut, externalID, attempts)
	} else {
		req.report(StatusError, externalID, attempts)
	}
	return err
}

var validate = validator.New()

func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Transcriber turns one complete audio buffer into a canonical Response.
type Transcriber interface {
	Name() provider.Name
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Poll       PollConfig
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (o Options) baseURL(fallback string) string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}
	return fallback
}

type factory func(creds provider.Credentials, opts Options) (Transcriber, error)

var registry = map[provider.Name]factory{
	provider.Deepgram:   newDeepgram,
	provider.AssemblyAI: newAssemblyAI,
	provider.Soniox:     newSoniox,
}

func New(name provider.Name, creds provider.Credentials, opts Options) (Transcriber, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, name)
	}
	return f(creds, opts)
}

func requireKey(name provider.Name, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: %s", provider.ErrMissingCredentials, name)
	}
	return nil
}
