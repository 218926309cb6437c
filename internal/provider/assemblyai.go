package provider

import (
	"net/http"
	"net/url"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

// https://www.assemblyai.com/docs/api-reference/streaming-api/streaming-api
const assemblyAIStreamingURL = "wss://streaming.assemblyai.com/v3/ws"

type assemblyAI struct {
	identityTransform
	apiKey  string
	baseURL string
	vocab   payload.Vocabulary
}

func newAssemblyAI(creds Credentials, opts Options) (Adapter, error) {
	if err := requireKey(AssemblyAI, creds.AssemblyAIAPIKey); err != nil {
		return nil, err
	}
	base := opts.BaseURL
	if base == "" {
		base = assemblyAIStreamingURL
	}
	return &assemblyAI{
		apiKey:  creds.AssemblyAIAPIKey,
		baseURL: base,
		vocab:   payload.NewVocabulary("Terminate", "ForceEndpoint", "UpdateConfiguration"),
	}, nil
}

func (a *assemblyAI) Name() Name {
	return AssemblyAI
}

func (a *assemblyAI) UpstreamURL(clientURL *url.URL) *url.URL {
	return buildURL(a.baseURL, clientURL, nil)
}

func (a *assemblyAI) Headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", a.apiKey)
	return h
}

func (a *assemblyAI) ControlTypes() payload.Vocabulary {
	return a.vocab
}
