package batch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/transcribe-relay/internal/provider"
)

var fastPoll = PollConfig{Interval: time.Millisecond, MaxAttempts: 5}

type recordedStatus struct {
	status     Status
	externalID string
	attempts   int
}

type statusLog struct {
	mu      sync.Mutex
	entries []recordedStatus
}

func (l *statusLog) record(status Status, externalID string, attempts int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, recordedStatus{status, externalID, attempts})
}

func (l *statusLog) statuses() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Status, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.status
	}
	return out
}

func (l *statusLog) last() recordedStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[len(l.entries)-1]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type assemblyAIVendor struct {
	mu          sync.Mutex
	pending     int
	finalStatus string
	polls       int
	created     map[string]any
	auth        string
}

func (v *assemblyAIVendor) snapshot() (polls int, auth string, created map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.polls, v.auth, v.created
}

func (v *assemblyAIVendor) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.auth = r.Header.Get("Authorization")
		v.mu.Unlock()
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("unexpected upload content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "audio-bytes" {
			t.Errorf("unexpected upload body %q", body)
		}
		writeJSON(w, map[string]string{"upload_url": "https://cdn.example/upload/1"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		v.mu.Lock()
		v.created = req
		v.mu.Unlock()
		writeJSON(w, map[string]string{"id": "tr_1", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/tr_1", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.polls++
		polls := v.polls
		v.mu.Unlock()

		if polls <= v.pending {
			writeJSON(w, map[string]string{"id": "tr_1", "status": "processing"})
			return
		}
		switch v.finalStatus {
		case "error":
			writeJSON(w, map[string]string{"id": "tr_1", "status": "error", "error": "audio too short"})
		case "completed":
			writeJSON(w, map[string]any{
				"id":             "tr_1",
				"status":         "completed",
				"text":           "Hello world.",
				"confidence":     0.93,
				"audio_duration": 2.5,
				"words": []map[string]any{
					{"text": "Hello", "start": 100, "end": 480, "confidence": 0.98, "speaker": "A"},
					{"text": "world.", "start": 520, "end": 1010, "confidence": 0.88, "speaker": "1"},
				},
			})
		default:
			writeJSON(w, map[string]string{"id": "tr_1", "status": v.finalStatus})
		}
	})
	return mux
}

func newAssemblyAITest(t *testing.T, vendor *assemblyAIVendor) Transcriber {
	srv := httptest.NewServer(vendor.handler(t))
	t.Cleanup(srv.Close)

	tr, err := New(provider.AssemblyAI, provider.Credentials{AssemblyAIAPIKey: "aai-key"}, Options{BaseURL: srv.URL, Poll: fastPoll})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestAssemblyAI_Transcribe(t *testing.T) {
	vendor := &assemblyAIVendor{pending: 2, finalStatus: "completed"}
	tr := newAssemblyAITest(t, vendor)

	log := &statusLog{}
	resp, err := tr.Transcribe(context.Background(), Request{
		Audio:     []byte("audio-bytes"),
		Languages: []string{"en"},
		Keywords:  []string{"relay"},
		OnStatus:  log.record,
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	polls, auth, created := vendor.snapshot()
	if polls != 3 {
		t.Errorf("expected 3 polls, got %d", polls)
	}
	if auth != "aai-key" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if created["audio_url"] != "https://cdn.example/upload/1" || created["language_code"] != "en" {
		t.Errorf("unexpected transcript request %v", created)
	}
	if created["speaker_labels"] != true {
		t.Error("speaker labels should be requested")
	}

	alt := resp.Results.Channels[0].Alternatives[0]
	if alt.Transcript != "Hello world." || alt.Confidence != 0.93 {
		t.Errorf("unexpected alternative %+v", alt)
	}
	if len(alt.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(alt.Words))
	}
	if alt.Words[0].Start != 0.1 || alt.Words[0].End != 0.48 {
		t.Errorf("timings should be seconds, got %+v", alt.Words[0])
	}
	if alt.Words[0].Speaker != nil {
		t.Errorf("letter speaker should be dropped, got %d", *alt.Words[0].Speaker)
	}
	if alt.Words[1].Speaker == nil || *alt.Words[1].Speaker != 1 {
		t.Errorf("numeric speaker should parse, got %v", alt.Words[1].Speaker)
	}
	if resp.Metadata["audio_duration"] != 2.5 {
		t.Errorf("unexpected metadata %v", resp.Metadata)
	}

	want := []Status{StatusUploading, StatusSubmitted, StatusProcessing, StatusProcessing, StatusCompleted}
	got := log.statuses()
	if strings.Join(statusStrings(got), ",") != strings.Join(statusStrings(want), ",") {
		t.Errorf("unexpected transitions %v", got)
	}
	if last := log.last(); last.externalID != "tr_1" || last.attempts != 3 {
		t.Errorf("unexpected final report %+v", last)
	}
}

func TestAssemblyAI_VendorError(t *testing.T) {
	tr := newAssemblyAITest(t, &assemblyAIVendor{finalStatus: "error"})
	log := &statusLog{}

	_, err := tr.Transcribe(context.Background(), Request{Audio: []byte("audio-bytes"), OnStatus: log.record})

	var vendorErr *VendorError
	if !errors.As(err, &vendorErr) {
		t.Fatalf("expected VendorError, got %v", err)
	}
	if vendorErr.Message != "audio too short" {
		t.Errorf("unexpected message %q", vendorErr.Message)
	}
	if log.last().status != StatusError {
		t.Errorf("expected error status, got %s", log.last().status)
	}
}

func TestAssemblyAI_UnknownStatusFailsClosed(t *testing.T) {
	tr := newAssemblyAITest(t, &assemblyAIVendor{finalStatus: "paused"})

	_, err := tr.Transcribe(context.Background(), Request{Audio: []byte("audio-bytes")})

	var vendorErr *VendorError
	if !errors.As(err, &vendorErr) || !strings.Contains(vendorErr.Message, "paused") {
		t.Fatalf("expected VendorError naming the status, got %v", err)
	}
}

func TestAssemblyAI_PollTimeout(t *testing.T) {
	vendor := &assemblyAIVendor{pending: 1000}
	tr := newAssemblyAITest(t, vendor)
	log := &statusLog{}

	_, err := tr.Transcribe(context.Background(), Request{Audio: []byte("audio-bytes"), OnStatus: log.record})

	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if polls, _, _ := vendor.snapshot(); polls != fastPoll.MaxAttempts {
		t.Errorf("expected %d polls, got %d", fastPoll.MaxAttempts, polls)
	}
	if last := log.last(); last.status != StatusTimedOut || last.attempts != fastPoll.MaxAttempts {
		t.Errorf("unexpected final report %+v", last)
	}
}

func TestAssemblyAI_UploadHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr, _ := New(provider.AssemblyAI, provider.Credentials{AssemblyAIAPIKey: "bad"}, Options{BaseURL: srv.URL, Poll: fastPoll})
	_, err := tr.Transcribe(context.Background(), Request{Audio: []byte("audio-bytes")})

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || !strings.Contains(statusErr.Body, "invalid api key") {
		t.Errorf("unexpected status error %+v", statusErr)
	}
}

func TestSoniox_Transcribe(t *testing.T) {
	var (
		mu       sync.Mutex
		auths    []string
		fileName string
		fileBody string
		created  map[string]any
		polls    int
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart file: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		mu.Lock()
		fileName, fileBody = fh.Filename, string(data)
		mu.Unlock()
		writeJSON(w, map[string]string{"id": "file_1"})
	})
	mux.HandleFunc("POST /v1/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		created = req
		mu.Unlock()
		writeJSON(w, map[string]string{"id": "tx_1", "status": "queued"})
	})
	mux.HandleFunc("GET /v1/transcriptions/tx_1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		polls++
		n := polls
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		if n == 1 {
			writeJSON(w, map[string]string{"id": "tx_1", "status": "queued"})
			return
		}
		writeJSON(w, map[string]string{"id": "tx_1", "status": "completed"})
	})
	mux.HandleFunc("GET /v1/transcriptions/tx_1/transcript", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"text": "Hi there",
			"tokens": []map[string]any{
				{"text": "Hi", "start_ms": 0, "end_ms": 250, "confidence": 0.7, "speaker": 1},
				{"text": " there", "start_ms": 300, "end_ms": 600, "speaker": "S2"},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr, err := New(provider.Soniox, provider.Credentials{SonioxAPIKey: "sx-key"}, Options{BaseURL: srv.URL, Poll: fastPoll})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := tr.Transcribe(context.Background(), Request{
		Audio:     []byte("pcm"),
		FileName:  "call.wav",
		Languages: []string{"en", "es"},
		Keywords:  []string{"Soniox"},
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, a := range auths {
		if a != "Bearer sx-key" {
			t.Errorf("expected bearer auth, got %q", a)
		}
	}
	if fileName != "call.wav" || fileBody != "pcm" {
		t.Errorf("unexpected upload %q %q", fileName, fileBody)
	}
	if created["file_id"] != "file_1" || created["model"] != sonioxModel {
		t.Errorf("unexpected create request %v", created)
	}
	if polls != 2 {
		t.Errorf("expected 2 polls, got %d", polls)
	}

	alt := resp.Results.Channels[0].Alternatives[0]
	if alt.Transcript != "Hi there" || alt.Confidence != 1.0 {
		t.Errorf("unexpected alternative %+v", alt)
	}
	if alt.Words[0].End != 0.25 || alt.Words[0].Confidence != 0.7 || *alt.Words[0].Speaker != 1 {
		t.Errorf("unexpected first word %+v", alt.Words[0])
	}
	if alt.Words[1].Confidence != 1.0 || alt.Words[1].Speaker == nil || *alt.Words[1].Speaker != 2 {
		t.Errorf("unexpected second word %+v", alt.Words[1])
	}
}

func TestSoniox_ErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"id": "file_1"})
	})
	mux.HandleFunc("POST /v1/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"id": "tx_1"})
	})
	mux.HandleFunc("GET /v1/transcriptions/tx_1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "error", "error_message": "unsupported format"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr, _ := New(provider.Soniox, provider.Credentials{SonioxAPIKey: "sx-key"}, Options{BaseURL: srv.URL, Poll: fastPoll})
	_, err := tr.Transcribe(context.Background(), Request{Audio: []byte("pcm")})

	var vendorErr *VendorError
	if !errors.As(err, &vendorErr) || vendorErr.Message != "unsupported format" {
		t.Fatalf("expected vendor error, got %v", err)
	}
}

func TestDeepgram_Transcribe(t *testing.T) {
	var gotQuery, gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/listen" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		writeJSON(w, map[string]any{
			"metadata": map[string]any{"request_id": "dg_1", "duration": 1.2},
			"results": map[string]any{
				"channels": []map[string]any{{
					"alternatives": []map[string]any{{
						"transcript": "hey",
						"confidence": 0.99,
						"words": []map[string]any{
							{"word": "hey", "start": 0.1, "end": 0.3, "confidence": 0.99, "speaker": 0, "punctuated_word": "Hey."},
						},
					}},
				}},
			},
		})
	}))
	defer srv.Close()

	tr, err := New(provider.Deepgram, provider.Credentials{DeepgramAPIKey: "dg-key"}, Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log := &statusLog{}
	resp, err := tr.Transcribe(context.Background(), Request{
		Audio:       []byte("wav"),
		ContentType: "audio/wav",
		Languages:   []string{"en"},
		OnStatus:    log.record,
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if gotAuth != "Token dg-key" || gotType != "audio/wav" {
		t.Errorf("unexpected headers auth=%q type=%q", gotAuth, gotType)
	}
	for _, want := range []string{"model=nova-3-general", "language=en", "diarize=true"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("expected %s in %s", want, gotQuery)
		}
	}

	w := resp.Results.Channels[0].Alternatives[0].Words[0]
	if w.PunctuatedWord != "Hey." || w.Speaker == nil || *w.Speaker != 0 {
		t.Errorf("unexpected word %+v", w)
	}
	if last := log.last(); last.status != StatusCompleted || last.externalID != "dg_1" {
		t.Errorf("unexpected final report %+v", last)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New("whisper", provider.Credentials{}, Options{}); !errors.Is(err, provider.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
	for _, name := range provider.Names() {
		if _, err := New(name, provider.Credentials{}, Options{}); !errors.Is(err, provider.ErrMissingCredentials) {
			t.Errorf("%s: expected ErrMissingCredentials, got %v", name, err)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"valid", Request{Audio: []byte("x"), Languages: []string{"en"}}, true},
		{"empty audio", Request{}, false},
		{"bad language", Request{Audio: []byte("x"), Languages: []string{"e"}}, false},
		{"long keyword", Request{Audio: []byte("x"), Keywords: []string{strings.Repeat("k", 65)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
