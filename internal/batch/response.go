package batch

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Response is the vendor-neutral batch result. Its JSON shape matches the
// Deepgram pre-recorded response so clients can parse every vendor alike.
type Response struct {
	Metadata map[string]any `json:"metadata"`
	Results  Results        `json:"results"`
}

type Results struct {
	Channels []Channel `json:"channels"`
}

type Channel struct {
	Alternatives []Alternative `json:"alternatives"`
}

type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

type Word struct {
	Word           string  `json:"word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	Speaker        *int    `json:"speaker,omitempty"`
	PunctuatedWord string  `json:"punctuated_word,omitempty"`
}

// Transcript returns the first alternative of the first channel.
func (r *Response) Transcript() string {
	if r == nil || len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return ""
	}
	return r.Results.Channels[0].Alternatives[0].Transcript
}

func singleChannel(transcript string, confidence float64, words []Word, metadata map[string]any) *Response {
	if words == nil {
		words = []Word{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Response{
		Metadata: metadata,
		Results: Results{
			Channels: []Channel{{
				Alternatives: []Alternative{{
					Transcript: transcript,
					Confidence: confidence,
					Words:      words,
				}},
			}},
		},
	}
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}

// parseSpeaker accepts labels like "A", "1" or "S2" and keeps the digits.
// AssemblyAI letters carry no digits and yield nil.
func parseSpeaker(label string) *int {
	digits := strings.TrimLeftFunc(label, func(r rune) bool { return !unicode.IsDigit(r) })
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// speakerID is a vendor speaker field that may be a JSON number or a string.
type speakerID struct {
	value *int
}

func (s *speakerID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n >= 0 {
			s.value = &n
		}
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		s.value = parseSpeaker(label)
	}
	return nil
}
