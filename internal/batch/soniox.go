package batch

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/eleven-am/transcribe-relay/internal/provider"
)

const (
	sonioxBaseURL = "https://api.soniox.com"
	sonioxModel   = "stt-async-preview"
)

type soniox struct {
	client *apiClient
	poll   PollConfig
}

// newSoniox authenticates every request with a static bearer token through
// an oauth2 transport layered on the configured client.
func newSoniox(creds provider.Credentials, opts Options) (Transcriber, error) {
	if err := requireKey(provider.Soniox, creds.SonioxAPIKey); err != nil {
		return nil, err
	}

	base := opts.httpClient()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: creds.SonioxAPIKey,
		TokenType:   "Bearer",
	})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = base.Timeout

	return &soniox{
		client: &apiClient{
			name:       provider.Soniox,
			httpClient: httpClient,
			baseURL:    opts.baseURL(sonioxBaseURL),
		},
		poll: opts.Poll,
	}, nil
}

func (s *soniox) Name() provider.Name {
	return provider.Soniox
}

type sonioxContext struct {
	Terms []string `json:"terms,omitempty"`
}

type sonioxCreateRequest struct {
	Model                        string         `json:"model"`
	FileID                       string         `json:"file_id"`
	LanguageHints                []string       `json:"language_hints,omitempty"`
	EnableSpeakerDiarization     bool           `json:"enable_speaker_diarization"`
	EnableLanguageIdentification bool           `json:"enable_language_identification"`
	Context                      *sonioxContext `json:"context,omitempty"`
}

type sonioxResource struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type sonioxTranscript struct {
	Text   string        `json:"text"`
	Tokens []sonioxToken `json:"tokens"`
}

type sonioxToken struct {
	Text       string    `json:"text"`
	StartMs    int64     `json:"start_ms"`
	EndMs      int64     `json:"end_ms"`
	Confidence *float64  `json:"confidence"`
	Speaker    speakerID `json:"speaker"`
}

func (s *soniox) Transcribe(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.report(StatusUploading, "", 0)

	fileID, err := s.upload(ctx, req)
	if err != nil {
		return nil, reportFailure(req, "", 0, err)
	}

	create := sonioxCreateRequest{
		Model:                        sonioxModel,
		FileID:                       fileID,
		LanguageHints:                req.Languages,
		EnableSpeakerDiarization:     true,
		EnableLanguageIdentification: true,
	}
	if req.Model != "" {
		create.Model = req.Model
	}
	if len(req.Keywords) > 0 {
		create.Context = &sonioxContext{Terms: req.Keywords}
	}

	var job sonioxResource
	if err := s.client.postJSON(ctx, "/v1/transcriptions", create, &job); err != nil {
		return nil, reportFailure(req, "", 0, err)
	}
	req.report(StatusSubmitted, job.ID, 0)

	attempts := 0
	err = poll(ctx, s.poll, func(ctx context.Context, attempt int) (bool, error) {
		attempts = attempt
		var status sonioxResource
		if err := s.client.get(ctx, "/v1/transcriptions/"+job.ID, &status); err != nil {
			return false, err
		}

		switch status.Status {
		case "completed":
			return true, nil
		case "queued":
			req.report(StatusQueued, job.ID, attempt)
			return false, nil
		case "processing":
			req.report(StatusProcessing, job.ID, attempt)
			return false, nil
		case "error":
			msg := status.ErrorMessage
			if msg == "" {
				msg = "unknown error"
			}
			return false, &VendorError{Provider: provider.Soniox, Message: msg}
		default:
			return false, &VendorError{Provider: provider.Soniox, Message: fmt.Sprintf("unexpected transcription status %q", status.Status)}
		}
	})
	if err != nil {
		return nil, reportFailure(req, job.ID, attempts, err)
	}

	var transcript sonioxTranscript
	if err := s.client.get(ctx, "/v1/transcriptions/"+job.ID+"/transcript", &transcript); err != nil {
		return nil, reportFailure(req, job.ID, attempts, err)
	}

	req.report(StatusCompleted, job.ID, attempts)
	return convertSoniox(job.ID, &transcript), nil
}

func (s *soniox) upload(ctx context.Context, req Request) (string, error) {
	name := req.FileName
	if name == "" {
		name = "audio.wav"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	var file sonioxResource
	if err := s.client.do(ctx, http.MethodPost, "/v1/files", &body, form.FormDataContentType(), &file); err != nil {
		return "", err
	}
	return file.ID, nil
}

func convertSoniox(id string, t *sonioxTranscript) *Response {
	words := make([]Word, 0, len(t.Tokens))
	for _, tok := range t.Tokens {
		confidence := 1.0
		if tok.Confidence != nil {
			confidence = *tok.Confidence
		}
		words = append(words, Word{
			Word:           tok.Text,
			Start:          msToSeconds(tok.StartMs),
			End:            msToSeconds(tok.EndMs),
			Confidence:     confidence,
			Speaker:        tok.Speaker.value,
			PunctuatedWord: tok.Text,
		})
	}

	return singleChannel(t.Text, 1.0, words, map[string]any{"request_id": id})
}
