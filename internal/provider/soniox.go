package provider

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

// https://soniox.com/docs/stt/api-reference/websocket-api
const sonioxRealtimeURL = "wss://stt-rt.soniox.com/transcribe-websocket"

type soniox struct {
	apiKey  string
	baseURL string
	vocab   payload.Vocabulary
}

func newSoniox(creds Credentials, opts Options) (Adapter, error) {
	if err := requireKey(Soniox, creds.SonioxAPIKey); err != nil {
		return nil, err
	}
	base := opts.BaseURL
	if base == "" {
		base = sonioxRealtimeURL
	}
	return &soniox{
		apiKey:  creds.SonioxAPIKey,
		baseURL: base,
		vocab:   payload.NewVocabulary("keepalive", "finalize"),
	}, nil
}

func (s *soniox) Name() Name {
	return Soniox
}

// Soniox takes its session config in-band, so nothing from the client URL is
// forwarded.
func (s *soniox) UpstreamURL(_ *url.URL) *url.URL {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return &url.URL{}
	}
	u.RawQuery = ""
	return u
}

func (s *soniox) Headers() http.Header {
	return http.Header{}
}

func (s *soniox) ControlTypes() payload.Vocabulary {
	return s.vocab
}

// TransformFirstMessage stamps the server-side key into the client's config
// frame. Frames that are not JSON objects pass through untouched.
func (s *soniox) TransformFirstMessage(p payload.Payload) payload.Payload {
	if !p.IsText() {
		return p
	}

	var cfg map[string]any
	if err := json.Unmarshal([]byte(p.Text), &cfg); err != nil || cfg == nil {
		return p
	}

	cfg["api_key"] = s.apiKey
	out, err := json.Marshal(cfg)
	if err != nil {
		return p
	}
	return payload.Text(string(out))
}
