package batch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/eleven-am/transcribe-relay/internal/provider"
)

const assemblyAIBaseURL = "https://api.assemblyai.com"

type assemblyAI struct {
	client *apiClient
	poll   PollConfig
}

func newAssemblyAI(creds provider.Credentials, opts Options) (Transcriber, error) {
	if err := requireKey(provider.AssemblyAI, creds.AssemblyAIAPIKey); err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", creds.AssemblyAIAPIKey)
	return &assemblyAI{
		client: &apiClient{
			name:       provider.AssemblyAI,
			httpClient: opts.httpClient(),
			baseURL:    opts.baseURL(assemblyAIBaseURL),
			header:     header,
		},
		poll: opts.Poll,
	}, nil
}

func (a *assemblyAI) Name() provider.Name {
	return provider.AssemblyAI
}

type assemblyAIUpload struct {
	UploadURL string `json:"upload_url"`
}

type assemblyAITranscriptRequest struct {
	AudioURL          string   `json:"audio_url"`
	LanguageCode      string   `json:"language_code,omitempty"`
	LanguageDetection *bool    `json:"language_detection,omitempty"`
	SpeakerLabels     bool     `json:"speaker_labels"`
	SpeechModel       string   `json:"speech_model,omitempty"`
	KeytermsPrompt    []string `json:"keyterms_prompt,omitempty"`
}

type assemblyAITranscript struct {
	ID            string           `json:"id"`
	Status        string           `json:"status"`
	Text          string           `json:"text"`
	Words         []assemblyAIWord `json:"words"`
	Confidence    *float64         `json:"confidence"`
	AudioDuration *float64         `json:"audio_duration"`
	Error         string           `json:"error"`
}

type assemblyAIWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

func (a *assemblyAI) Transcribe(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.report(StatusUploading, "", 0)

	var upload assemblyAIUpload
	if err := a.client.do(ctx, http.MethodPost, "/v2/upload", bytes.NewReader(req.Audio), "application/octet-stream", &upload); err != nil {
		return nil, reportFailure(req, "", 0, err)
	}

	create := assemblyAITranscriptRequest{
		AudioURL:       upload.UploadURL,
		SpeakerLabels:  true,
		SpeechModel:    req.Model,
		KeytermsPrompt: req.Keywords,
	}
	if len(req.Languages) == 1 {
		create.LanguageCode = req.Languages[0]
	} else {
		detect := true
		create.LanguageDetection = &detect
	}

	var job assemblyAITranscript
	if err := a.client.postJSON(ctx, "/v2/transcript", create, &job); err != nil {
		return nil, reportFailure(req, "", 0, err)
	}
	req.report(StatusSubmitted, job.ID, 0)

	var result assemblyAITranscript
	attempts := 0
	err := poll(ctx, a.poll, func(ctx context.Context, attempt int) (bool, error) {
		attempts = attempt
		var current assemblyAITranscript
		if err := a.client.get(ctx, "/v2/transcript/"+job.ID, &current); err != nil {
			return false, err
		}
		result = current

		switch result.Status {
		case "completed":
			return true, nil
		case "queued":
			req.report(StatusQueued, job.ID, attempt)
			return false, nil
		case "processing":
			req.report(StatusProcessing, job.ID, attempt)
			return false, nil
		case "error":
			msg := result.Error
			if msg == "" {
				msg = "unknown error"
			}
			return false, &VendorError{Provider: provider.AssemblyAI, Message: msg}
		default:
			return false, &VendorError{Provider: provider.AssemblyAI, Message: fmt.Sprintf("unexpected transcript status %q", result.Status)}
		}
	})
	if err != nil {
		return nil, reportFailure(req, job.ID, attempts, err)
	}

	req.report(StatusCompleted, job.ID, attempts)
	return convertAssemblyAI(&result), nil
}

func convertAssemblyAI(t *assemblyAITranscript) *Response {
	words := make([]Word, 0, len(t.Words))
	for _, w := range t.Words {
		words = append(words, Word{
			Word:           w.Text,
			Start:          msToSeconds(w.Start),
			End:            msToSeconds(w.End),
			Confidence:     w.Confidence,
			Speaker:        parseSpeaker(w.Speaker),
			PunctuatedWord: w.Text,
		})
	}

	confidence := 1.0
	if t.Confidence != nil {
		confidence = *t.Confidence
	}

	metadata := map[string]any{"request_id": t.ID}
	if t.AudioDuration != nil {
		metadata["audio_duration"] = *t.AudioDuration
	}

	return singleChannel(t.Text, confidence, words, metadata)
}
