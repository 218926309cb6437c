// Package audio inspects uploaded audio before it is handed to a vendor.
package audio

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotWAV       = errors.New("not a RIFF/WAVE payload")
	ErrTruncatedWAV = errors.New("truncated WAVE header")
)

// Format is what could be learned about a payload from its leading bytes.
// Duration is zero when it cannot be derived from the header.
type Format struct {
	MIME      string
	Extension string
	Duration  time.Duration
}

// IsMedia reports whether the payload looked like audio or video.
func (f Format) IsMedia() bool {
	return strings.HasPrefix(f.MIME, "audio/") || strings.HasPrefix(f.MIME, "video/")
}

func Inspect(data []byte) Format {
	m := mimetype.Detect(data)
	f := Format{
		MIME:      m.String(),
		Extension: m.Extension(),
	}
	if m.Is("audio/wav") {
		if h, err := ParseWAVHeader(data); err == nil {
			f.Duration = h.Duration()
		}
	}
	return f
}

type WAVHeader struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	DataBytes     uint32
}

func (h WAVHeader) Duration() time.Duration {
	bytesPerSecond := uint64(h.SampleRate) * uint64(h.Channels) * uint64(h.BitsPerSample) / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(uint64(h.DataBytes) * uint64(time.Second) / bytesPerSecond)
}

// ParseWAVHeader walks the RIFF chunks up to the data chunk. A data chunk
// that claims more bytes than are present is clamped to what was received,
// since streaming encoders often write a placeholder size.
func ParseWAVHeader(data []byte) (WAVHeader, error) {
	var h WAVHeader
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return h, ErrNotWAV
	}

	var haveFmt bool
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		body := pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return h, ErrTruncatedWAV
			}
			h.AudioFormat = binary.LittleEndian.Uint16(data[body:])
			h.Channels = binary.LittleEndian.Uint16(data[body+2:])
			h.SampleRate = binary.LittleEndian.Uint32(data[body+4:])
			h.BitsPerSample = binary.LittleEndian.Uint16(data[body+14:])
			haveFmt = true
		case "data":
			if !haveFmt {
				return h, ErrTruncatedWAV
			}
			available := uint32(len(data) - body)
			h.DataBytes = min(size, available)
			return h, nil
		}

		next := body + int(size) + int(size&1)
		if next <= pos || next > len(data) {
			break
		}
		pos = next
	}
	return h, ErrTruncatedWAV
}
