package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 2 * 1024 * 1024
	maxCloseReason   = 123
	handshakeTimeout = 10 * time.Second
)

type WebsocketDialerConfig struct {
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
}

// WebsocketDialer dials vendor endpoints with gorilla/websocket. Each Dial
// runs the handshake and the read loop in its own goroutine.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

func NewWebsocketDialer(cfg WebsocketDialerConfig) *WebsocketDialer {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = handshakeTimeout
	}
	return &WebsocketDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
		},
	}
}

func (d *WebsocketDialer) Dial(target *url.URL, headers http.Header, events UpstreamEvents) UpstreamSocket {
	ctx, cancel := context.WithCancel(context.Background())
	s := &upstreamConn{
		events: events,
		cancel: cancel,
	}
	go s.run(ctx, d.dialer, target.String(), headers)
	return s
}

type upstreamConn struct {
	events UpstreamEvents
	cancel context.CancelFunc

	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

func (s *upstreamConn) run(ctx context.Context, dialer *websocket.Dialer, target string, headers http.Header) {
	ws, resp, err := dialer.DialContext(ctx, target, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if s.isClosed() {
			return
		}
		if resp != nil {
			err = fmt.Errorf("dial upstream: %w (status %d)", err, resp.StatusCode)
		} else {
			err = fmt.Errorf("dial upstream: %w", err)
		}
		s.events.OnUpstreamError(err)
		s.events.OnUpstreamClose(websocket.CloseAbnormalClosure, ReasonUpstreamConnectFailed)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ws.Close()
		return
	}
	s.ws = ws
	s.mu.Unlock()

	s.events.OnUpstreamOpen()
	s.readLoop(ws)
}

func (s *upstreamConn) readLoop(ws *websocket.Conn) {
	ws.SetReadLimit(maxMessageSize)
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				s.events.OnUpstreamClose(closeErr.Code, closeErr.Text)
				return
			}
			if s.isClosed() {
				return
			}
			s.events.OnUpstreamError(err)
			s.events.OnUpstreamClose(websocket.CloseAbnormalClosure, "")
			return
		}

		p, ok := payload.FromFrame(messageType, data)
		if !ok {
			continue
		}
		s.events.OnUpstreamMessage(p)
	}
}

func (s *upstreamConn) Send(p payload.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSocketClosed
	}
	if s.ws == nil {
		return ErrNotConnected
	}
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return s.ws.WriteMessage(p.MessageType(), p.Bytes())
}

func (s *upstreamConn) Close(code int, reason string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ws := s.ws
	s.mu.Unlock()

	s.cancel()
	if ws == nil {
		return nil
	}
	return closeSocket(ws, code, reason)
}

func (s *upstreamConn) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func closeSocket(ws *websocket.Conn, code int, reason string) error {
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}
	msg := websocket.FormatCloseMessage(code, reason)
	writeErr := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	if err := ws.Close(); err != nil {
		return err
	}
	if writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) {
		return writeErr
	}
	return nil
}
