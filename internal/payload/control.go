package payload

import (
	"encoding/json"
	"sort"
)

// Vocabulary is the set of JSON "type" values a vendor treats as session
// control frames.
type Vocabulary map[string]struct{}

func NewVocabulary(types ...string) Vocabulary {
	v := make(Vocabulary, len(types))
	for _, t := range types {
		v[t] = struct{}{}
	}
	return v
}

func (v Vocabulary) Contains(t string) bool {
	_, ok := v[t]
	return ok
}

// Types lists the vocabulary in sorted order.
func (v Vocabulary) Types() []string {
	out := make([]string, 0, len(v))
	for t := range v {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsControlMessage reports whether p is a text frame holding a JSON object
// whose "type" field is in vocab. It never fails; anything unparseable is data.
func IsControlMessage(p Payload, vocab Vocabulary) bool {
	if p.Kind != KindText || len(vocab) == 0 {
		return false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(p.Text), &obj); err != nil || obj == nil {
		return false
	}

	raw, ok := obj["type"]
	if !ok {
		return false
	}

	var t string
	if err := json.Unmarshal(raw, &t); err != nil {
		return false
	}
	return vocab.Contains(t)
}
