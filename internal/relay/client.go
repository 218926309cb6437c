package relay

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eleven-am/transcribe-relay/internal/payload"
)

const defaultClientBuffer = 256

// WebsocketClient adapts an accepted gorilla connection to ClientSocket.
// Writes go through a bounded channel drained by WritePump; when the channel
// is full Send reports ErrBackpressure and the drain handler fires once the
// pump has caught up.
type WebsocketClient struct {
	ws     *websocket.Conn
	logger *slog.Logger
	send   chan payload.Payload

	mu          sync.Mutex
	closed      bool
	closeCode   int
	closeReason string
	onDrain     func()

	stalled atomic.Bool
}

func NewWebsocketClient(ws *websocket.Conn, bufferSize int, logger *slog.Logger) *WebsocketClient {
	if bufferSize <= 0 {
		bufferSize = defaultClientBuffer
	}
	return &WebsocketClient{
		ws:     ws,
		logger: logger,
		send:   make(chan payload.Payload, bufferSize),
	}
}

func (c *WebsocketClient) SetDrainHandler(fn func()) {
	c.mu.Lock()
	c.onDrain = fn
	c.mu.Unlock()
}

func (c *WebsocketClient) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *WebsocketClient) Send(p payload.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSocketClosed
	}
	if c.enqueue(p) {
		return nil
	}
	// ErrBackpressure is only returned once stalled is set and the buffer is
	// still full, so the pump's next write observes the stall and fires drain.
	c.stalled.Store(true)
	if c.enqueue(p) {
		return nil
	}
	return ErrBackpressure
}

func (c *WebsocketClient) enqueue(p payload.Payload) bool {
	select {
	case c.send <- p:
		return true
	default:
		return false
	}
}

// Close queues a close frame behind any payloads already accepted.
func (c *WebsocketClient) Close(code int, reason string) error {
	c.shutdown(code, reason)
	return nil
}

func (c *WebsocketClient) shutdown(code int, reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.send)
	return true
}

func (c *WebsocketClient) drainHandler() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onDrain
}

func (c *WebsocketClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case p, ok := <-c.send:
			if !ok {
				c.mu.Lock()
				code, reason := c.closeCode, c.closeReason
				c.mu.Unlock()
				if err := closeSocket(c.ws, code, reason); err != nil {
					c.logger.Debug("client close failed", "error", err)
				}
				return
			}

			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(p.MessageType(), p.Bytes()); err != nil {
				c.logger.Error("websocket write error", "error", err)
				c.shutdown(websocket.CloseAbnormalClosure, ReasonDownstreamSendFailed)
				_ = c.ws.Close()
				return
			}

			if c.stalled.Load() && len(c.send) <= cap(c.send)/2 {
				c.stalled.Store(false)
				if fn := c.drainHandler(); fn != nil {
					fn()
				}
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown(websocket.CloseAbnormalClosure, ReasonDownstreamSendFailed)
				_ = c.ws.Close()
				return
			}
		}
	}
}

// ReadPump hands every data frame to onMessage until the client goes away
// and returns the close code the client sent.
func (c *WebsocketClient) ReadPump(onMessage func(payload.Payload)) int {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return closeErr.Code
			}
			if c.IsOpen() {
				c.logger.Debug("websocket read error", "error", err)
			}
			return websocket.CloseAbnormalClosure
		}

		if p, ok := payload.FromFrame(messageType, data); ok {
			onMessage(p)
		}
	}
}
