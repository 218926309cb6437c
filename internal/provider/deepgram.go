package provider

import (
	"net/http"
	"net/url"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

// https://developers.deepgram.com/docs/lower-level-websockets
const (
	deepgramListenURL = "wss://api.deepgram.com/v1/listen"
	deepgramModel     = "nova-3-general"
)

type deepgram struct {
	identityTransform
	apiKey  string
	baseURL string
	vocab   payload.Vocabulary
}

func newDeepgram(creds Credentials, opts Options) (Adapter, error) {
	if err := requireKey(Deepgram, creds.DeepgramAPIKey); err != nil {
		return nil, err
	}
	base := opts.BaseURL
	if base == "" {
		base = deepgramListenURL
	}
	return &deepgram{
		apiKey:  creds.DeepgramAPIKey,
		baseURL: base,
		vocab:   payload.NewVocabulary("KeepAlive", "CloseStream", "Finalize"),
	}, nil
}

func (d *deepgram) Name() Name {
	return Deepgram
}

func (d *deepgram) UpstreamURL(clientURL *url.URL) *url.URL {
	return buildURL(d.baseURL, clientURL, url.Values{
		"model":       {deepgramModel},
		"mip_opt_out": {"false"},
	})
}

func (d *deepgram) Headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Token "+d.apiKey)
	return h
}

func (d *deepgram) ControlTypes() payload.Vocabulary {
	return d.vocab
}
