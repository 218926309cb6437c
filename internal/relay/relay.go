package relay

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

const (
	DefaultCloseCode       = 1011
	DefaultErrorTimeout    = time.Second
	DefaultConnectTimeout  = 5 * time.Second
	DefaultMaxPendingBytes = 5 * 1024 * 1024
)

const (
	ReasonConnectionClosed       = "connection_closed"
	ReasonClientClosed           = "client_closed"
	ReasonUpstreamClosed         = "upstream_closed"
	ReasonUpstreamError          = "upstream_error"
	ReasonUpstreamUnavailable    = "upstream_unavailable"
	ReasonUpstreamSendFailed     = "upstream_send_failed"
	ReasonUpstreamConnectTimeout = "upstream_connect_timeout"
	ReasonUpstreamConnectFailed  = "upstream_connect_failed"
	ReasonPayloadTooLarge        = "payload_too_large"
	ReasonBackpressureLimit      = "backpressure_limit"
	ReasonDownstreamSendFailed   = "downstream_send_failed"
	ReasonDownstreamBackpressure = "downstream_backpressure"
	ReasonServerShutdown         = "server_shutdown"
)

var (
	ErrConnectTimeout = errors.New(ReasonUpstreamConnectTimeout)
	ErrBackpressure   = errors.New("send buffer full")
	ErrSocketClosed   = errors.New("socket closed")
	ErrNotConnected   = errors.New("socket not connected")
)

// CloseError is what readiness waiters receive when the connection is torn
// down before the upstream handshake completed.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("connection closed before upstream was ready: %s (%d)", e.Reason, e.Code)
}

// ClientSocket is the application-facing side of a relay. Send must not
// block; a full buffer is reported as ErrBackpressure.
type ClientSocket interface {
	Send(p payload.Payload) error
	Close(code int, reason string) error
	IsOpen() bool
}

type UpstreamSocket interface {
	Send(p payload.Payload) error
	Close(code int, reason string) error
}

// UpstreamEvents receives the upstream socket lifecycle. Implementations of
// UpstreamDialer must deliver events from their own goroutine, never from
// inside Dial, Send or Close.
type UpstreamEvents interface {
	OnUpstreamOpen()
	OnUpstreamMessage(p payload.Payload)
	OnUpstreamClose(code int, reason string)
	OnUpstreamError(err error)
}

// UpstreamDialer starts connecting and returns immediately; readiness is
// signalled through OnUpstreamOpen.
type UpstreamDialer interface {
	Dial(target *url.URL, headers http.Header, events UpstreamEvents) UpstreamSocket
}

type Observer interface {
	ConnectionOpened(provider string)
	ConnectionClosed(provider, reason string, lifetime time.Duration)
	PayloadQueued(provider string, control bool, size int)
	UpstreamReady(provider string, wait time.Duration)
}

type nopObserver struct{}

func (nopObserver) ConnectionOpened(string)                        {}
func (nopObserver) ConnectionClosed(string, string, time.Duration) {}
func (nopObserver) PayloadQueued(string, bool, int)                {}
func (nopObserver) UpstreamReady(string, time.Duration)            {}

var knownReasons = map[string]struct{}{
	ReasonConnectionClosed:       {},
	ReasonClientClosed:           {},
	ReasonUpstreamClosed:         {},
	ReasonUpstreamError:          {},
	ReasonUpstreamUnavailable:    {},
	ReasonUpstreamSendFailed:     {},
	ReasonUpstreamConnectTimeout: {},
	ReasonUpstreamConnectFailed:  {},
	ReasonPayloadTooLarge:        {},
	ReasonBackpressureLimit:      {},
	ReasonDownstreamSendFailed:   {},
	ReasonDownstreamBackpressure: {},
	ReasonServerShutdown:         {},
}

// upstreamReason maps a vendor close reason onto the fixed reason set used
// for close frames, telemetry labels and session metrics. Vendor free text
// only ever reaches the logs.
func upstreamReason(reason string) string {
	if _, ok := knownReasons[reason]; ok {
		return reason
	}
	return ReasonUpstreamClosed
}

// NormalizeCloseCode maps codes that are transport-internal or reserved onto
// DefaultCloseCode so they never cross the relay boundary.
func NormalizeCloseCode(code int) int {
	switch {
	case code < 1000:
		return DefaultCloseCode
	case code == 1005, code == 1006, code == 1015:
		return DefaultCloseCode
	case code >= 5000:
		return DefaultCloseCode
	default:
		return code
	}
}
