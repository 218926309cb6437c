package provider

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

const SelectorParam = "provider"

var (
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrMissingCredentials = errors.New("missing provider credentials")
)

type Name string

const (
	Deepgram   Name = "deepgram"
	AssemblyAI Name = "assemblyai"
	Soniox     Name = "soniox"
)

// Adapter describes everything the relay needs to talk to one vendor's live
// endpoint. It is chosen once per connection.
type Adapter interface {
	Name() Name
	UpstreamURL(clientURL *url.URL) *url.URL
	Headers() http.Header
	ControlTypes() payload.Vocabulary
	TransformFirstMessage(p payload.Payload) payload.Payload
}

type Credentials struct {
	DeepgramAPIKey   string
	AssemblyAIAPIKey string
	SonioxAPIKey     string
}

type Options struct {
	// BaseURL overrides the vendor websocket endpoint.
	BaseURL string
}

type factory func(creds Credentials, opts Options) (Adapter, error)

var registry = map[Name]factory{
	Deepgram:   newDeepgram,
	AssemblyAI: newAssemblyAI,
	Soniox:     newSoniox,
}

func New(name Name, creds Credentials, opts Options) (Adapter, error) {
	f, ok := registry[Name(strings.ToLower(string(name)))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return f(creds, opts)
}

func Names() []Name {
	names := make([]Name, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func Parse(s string, fallback Name) (Name, error) {
	if s == "" {
		return fallback, nil
	}
	n := Name(strings.ToLower(s))
	if _, ok := registry[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return n, nil
}

func requireKey(name Name, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, name)
	}
	return nil
}

// buildURL copies every client query parameter except the provider selector
// and then applies forced, so clients can never override vendor-mandatory
// values.
func buildURL(base string, clientURL *url.URL, forced url.Values) *url.URL {
	target, err := url.Parse(base)
	if err != nil {
		target = &url.URL{}
	}

	query := url.Values{}
	if clientURL != nil {
		for key, values := range clientURL.Query() {
			if key == SelectorParam {
				continue
			}
			for _, v := range values {
				query.Add(key, v)
			}
		}
	}
	for key, values := range forced {
		query.Del(key)
		for _, v := range values {
			query.Add(key, v)
		}
	}

	target.RawQuery = query.Encode()
	return target
}

type identityTransform struct{}

func (identityTransform) TransformFirstMessage(p payload.Payload) payload.Payload {
	return p
}
