package batch

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/eleven-am/transcribe-relay/internal/provider"
)

const (
	deepgramBaseURL = "https://api.deepgram.com"
	deepgramModel   = "nova-3-general"
)

type deepgram struct {
	client *apiClient
}

func newDeepgram(creds provider.Credentials, opts Options) (Transcriber, error) {
	if err := requireKey(provider.Deepgram, creds.DeepgramAPIKey); err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Token "+creds.DeepgramAPIKey)
	return &deepgram{
		client: &apiClient{
			name:       provider.Deepgram,
			httpClient: opts.httpClient(),
			baseURL:    opts.baseURL(deepgramBaseURL),
			header:     header,
		},
	}, nil
}

func (d *deepgram) Name() provider.Name {
	return provider.Deepgram
}

// Transcribe sends the audio in one request. Deepgram answers synchronously
// in the canonical shape, so there is nothing to poll.
func (d *deepgram) Transcribe(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("model", deepgramModel)
	if req.Model != "" {
		query.Set("model", req.Model)
	}
	query.Set("smart_format", "true")
	query.Set("diarize", "true")
	query.Set("punctuate", "true")
	switch len(req.Languages) {
	case 0:
		query.Set("detect_language", "true")
	case 1:
		query.Set("language", req.Languages[0])
	default:
		query.Set("language", "multi")
	}
	for _, k := range req.Keywords {
		query.Add("keyterm", k)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req.report(StatusUploading, "", 0)

	var resp Response
	if err := d.client.do(ctx, http.MethodPost, "/v1/listen?"+query.Encode(), bytes.NewReader(req.Audio), contentType, &resp); err != nil {
		return nil, reportFailure(req, "", 0, err)
	}

	externalID, _ := resp.Metadata["request_id"].(string)
	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	req.report(StatusCompleted, externalID, 0)
	return &resp, nil
}
