package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/eleven-am/transcribe-relay/internal/payload"
	"github.com/eleven-am/transcribe-relay/internal/provider"
)

type Config struct {
	ID              string
	MaxPendingBytes int
	ErrorTimeout    time.Duration
	// Eager dials the upstream at construction instead of on Initialize or
	// Preconnect.
	Eager    bool
	Dialer   UpstreamDialer
	Observer Observer
	Logger   *slog.Logger
}

type queued struct {
	payload payload.Payload
	size    int
}

// Connection relays one client socket to one vendor socket. Every callback
// and public method runs under mu, so the state below is only ever touched
// by one goroutine at a time.
type Connection struct {
	id           string
	adapter      provider.Adapter
	target       *url.URL
	dialer       UpstreamDialer
	observer     Observer
	logger       *slog.Logger
	maxPending   int
	errorTimeout time.Duration
	createdAt    time.Time

	mu              sync.Mutex
	client          ClientSocket
	upstream        UpstreamSocket
	ready           readiness
	shuttingDown    bool
	firstSent       bool
	control         []queued
	data            []queued
	pendingBytes    int
	downstream      []queued
	downstreamBytes int
	errorTimer      *time.Timer
	timerGen        uint64
	closeCode       int
	closeReason     string
	dialedAt        time.Time
	done            chan struct{}
}

func NewConnection(adapter provider.Adapter, clientURL *url.URL, cfg Config) *Connection {
	if cfg.MaxPendingBytes <= 0 {
		cfg.MaxPendingBytes = DefaultMaxPendingBytes
	}
	if cfg.ErrorTimeout <= 0 {
		cfg.ErrorTimeout = DefaultErrorTimeout
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Dialer == nil {
		cfg.Dialer = NewWebsocketDialer(WebsocketDialerConfig{})
	}

	c := &Connection{
		id:           cfg.ID,
		adapter:      adapter,
		target:       adapter.UpstreamURL(clientURL),
		dialer:       cfg.Dialer,
		observer:     cfg.Observer,
		maxPending:   cfg.MaxPendingBytes,
		errorTimeout: cfg.ErrorTimeout,
		createdAt:    time.Now(),
		ready:        newReadiness(),
		done:         make(chan struct{}),
	}
	c.logger = cfg.Logger.With("connection_id", cfg.ID, "provider", string(adapter.Name()))
	c.logger.Debug("relay created", "control_types", adapter.ControlTypes().Types())
	c.observer.ConnectionOpened(string(adapter.Name()))

	if cfg.Eager {
		c.mu.Lock()
		c.ensureUpstreamLocked()
		c.mu.Unlock()
	}
	return c
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) Provider() provider.Name {
	return c.adapter.Name()
}

// Initialize binds the client socket and dials the upstream if that has not
// happened yet. Anything already buffered is flushed if the upstream is open.
func (c *Connection) Initialize(client ClientSocket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		if err := client.Close(c.closeCode, c.closeReason); err != nil {
			c.logger.Debug("close late client failed", "error", err)
		}
		return
	}

	c.client = client
	c.ensureUpstreamLocked()
	if c.ready.isReady() {
		c.flushOutboundLocked()
		c.flushDownstreamLocked()
	}
}

// Preconnect dials the upstream and blocks until it is ready, the timeout
// elapses or ctx is cancelled. Failures tear the connection down before
// returning.
func (c *Connection) Preconnect(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	if c.shuttingDown {
		err := c.readyErrLocked()
		c.mu.Unlock()
		return err
	}
	c.ensureUpstreamLocked()
	waiters := c.ready.waiters
	c.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-waiters:
		c.mu.Lock()
		err := c.ready.err
		c.mu.Unlock()
		if err != nil {
			c.Close(DefaultCloseCode, ReasonUpstreamConnectFailed)
			return err
		}
		return nil
	case <-expired:
		c.Close(DefaultCloseCode, ReasonUpstreamConnectTimeout)
		return ErrConnectTimeout
	case <-ctx.Done():
		c.Close(DefaultCloseCode, ReasonUpstreamConnectFailed)
		return ctx.Err()
	}
}

func (c *Connection) readyErrLocked() error {
	if c.ready.err != nil {
		return c.ready.err
	}
	return &CloseError{Code: c.closeCode, Reason: c.closeReason}
}

// SendToUpstream forwards a client payload, buffering it while the upstream
// handshake is still in flight.
func (c *Connection) SendToUpstream(p payload.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		return
	}
	if c.upstream == nil {
		c.teardownLocked(DefaultCloseCode, ReasonUpstreamUnavailable, nil)
		return
	}

	if !c.firstSent {
		c.firstSent = true
		p = c.adapter.TransformFirstMessage(p)
	}

	isControl := payload.IsControlMessage(p, c.adapter.ControlTypes())

	if !c.ready.isReady() {
		c.enqueueLocked(p, isControl)
		return
	}

	if err := c.upstream.Send(p); err != nil {
		c.logger.Error("upstream send failed", "error", err)
		c.teardownLocked(DefaultCloseCode, ReasonUpstreamSendFailed, nil)
	}
}

// ForwardDownstream delivers a vendor payload to the client, parking it when
// the client is not bound yet or its send buffer is full.
func (c *Connection) ForwardDownstream(p payload.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forwardDownstreamLocked(p)
}

func (c *Connection) forwardDownstreamLocked(p payload.Payload) {
	if c.shuttingDown {
		return
	}
	if c.client == nil || !c.client.IsOpen() || len(c.downstream) > 0 {
		c.enqueueDownstreamLocked(p)
		return
	}

	err := c.client.Send(p)
	switch {
	case err == nil:
	case errors.Is(err, ErrBackpressure):
		c.enqueueDownstreamLocked(p)
	default:
		c.logger.Error("downstream send failed", "error", err)
		c.teardownLocked(DefaultCloseCode, ReasonDownstreamSendFailed, nil)
	}
}

// OnClientDrain resumes downstream delivery after the client reported
// backpressure.
func (c *Connection) OnClientDrain() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return
	}
	c.flushDownstreamLocked()
}

// Close tears the connection down once; later calls are no-ops.
func (c *Connection) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked(code, reason, nil)
}

func (c *Connection) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready.isReady()
}

func (c *Connection) PendingBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingBytes
}

func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuttingDown
}

// Done is closed after teardown.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// CloseStatus reports the normalized close code and reason once Done is
// closed.
func (c *Connection) CloseStatus() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCode, c.closeReason
}

func (c *Connection) OnUpstreamOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		return
	}
	if !c.ready.toReady() {
		return
	}
	c.observer.UpstreamReady(string(c.adapter.Name()), time.Since(c.dialedAt))
	c.logger.Debug("upstream ready", "pending_bytes", c.pendingBytes)

	c.flushOutboundLocked()
	c.flushDownstreamLocked()
}

func (c *Connection) OnUpstreamMessage(p payload.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forwardDownstreamLocked(p)
}

func (c *Connection) OnUpstreamClose(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopErrorTimerLocked()
	if c.shuttingDown {
		return
	}

	if code == 0 {
		code = DefaultCloseCode
	}
	c.logger.Info("upstream closed", "code", code, "vendor_reason", reason)

	var cause error
	if !c.ready.isReady() {
		cause = fmt.Errorf("upstream closed during handshake: %q (%d)", reason, code)
	}
	c.teardownLocked(code, upstreamReason(reason), cause)
}

func (c *Connection) OnUpstreamError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		return
	}
	c.logger.Warn("upstream error", "error", err)

	if !c.ready.isReady() {
		c.ready.reject(err)
	}
	c.armErrorTimerLocked()
}

func (c *Connection) ensureUpstreamLocked() {
	if c.upstream != nil || c.shuttingDown {
		return
	}
	c.dialedAt = time.Now()
	c.upstream = c.dialer.Dial(c.target, c.adapter.Headers(), c)
}

func (c *Connection) enqueueLocked(p payload.Payload, isControl bool) {
	size := payload.Size(p)
	if size > c.maxPending {
		c.logger.Warn("payload exceeds pending budget", "size", size, "limit", c.maxPending)
		c.teardownLocked(DefaultCloseCode, ReasonPayloadTooLarge, nil)
		return
	}
	if c.pendingBytes+size > c.maxPending {
		c.logger.Warn("pending budget exhausted", "pending_bytes", c.pendingBytes, "size", size)
		c.teardownLocked(DefaultCloseCode, ReasonBackpressureLimit, nil)
		return
	}

	item := queued{payload: p, size: size}
	if isControl {
		c.control = append(c.control, item)
	} else {
		c.data = append(c.data, item)
	}
	c.pendingBytes += size
	c.observer.PayloadQueued(string(c.adapter.Name()), isControl, size)
}

// flushOutboundLocked drains control frames ahead of data frames, preserving
// order within each queue.
func (c *Connection) flushOutboundLocked() {
	if c.upstream == nil || !c.ready.isReady() {
		return
	}

	for len(c.control) > 0 || len(c.data) > 0 {
		var item queued
		if len(c.control) > 0 {
			item, c.control = c.control[0], c.control[1:]
		} else {
			item, c.data = c.data[0], c.data[1:]
		}
		c.pendingBytes -= item.size

		if err := c.upstream.Send(item.payload); err != nil {
			c.logger.Error("upstream flush failed", "error", err)
			c.teardownLocked(DefaultCloseCode, ReasonUpstreamSendFailed, nil)
			return
		}
	}
}

func (c *Connection) enqueueDownstreamLocked(p payload.Payload) {
	size := payload.Size(p)
	if c.downstreamBytes+size > c.maxPending {
		c.logger.Warn("downstream budget exhausted", "pending_bytes", c.downstreamBytes, "size", size)
		c.teardownLocked(DefaultCloseCode, ReasonDownstreamBackpressure, nil)
		return
	}
	c.downstream = append(c.downstream, queued{payload: p, size: size})
	c.downstreamBytes += size
}

func (c *Connection) flushDownstreamLocked() {
	for len(c.downstream) > 0 && !c.shuttingDown {
		if c.client == nil || !c.client.IsOpen() {
			return
		}

		err := c.client.Send(c.downstream[0].payload)
		if errors.Is(err, ErrBackpressure) {
			return
		}
		c.downstreamBytes -= c.downstream[0].size
		c.downstream = c.downstream[1:]

		if err != nil {
			c.logger.Error("downstream flush failed", "error", err)
			c.teardownLocked(DefaultCloseCode, ReasonDownstreamSendFailed, nil)
			return
		}
	}
}

func (c *Connection) armErrorTimerLocked() {
	c.stopErrorTimerLocked()
	gen := c.timerGen
	c.errorTimer = time.AfterFunc(c.errorTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.timerGen {
			return
		}
		c.teardownLocked(DefaultCloseCode, ReasonUpstreamError, nil)
	})
}

func (c *Connection) stopErrorTimerLocked() {
	c.timerGen++
	if c.errorTimer != nil {
		c.errorTimer.Stop()
		c.errorTimer = nil
	}
}

// teardownLocked closes both sockets with the normalized code, settles
// readiness waiters and drops every buffered payload. cause, when set, is
// what waiters receive if the upstream never became ready.
func (c *Connection) teardownLocked(code int, reason string, cause error) {
	if c.shuttingDown {
		return
	}
	c.shuttingDown = true
	c.stopErrorTimerLocked()

	code = NormalizeCloseCode(code)
	if reason == "" {
		reason = ReasonConnectionClosed
	}
	c.closeCode = code
	c.closeReason = reason

	if cause == nil {
		cause = &CloseError{Code: code, Reason: reason}
	}
	c.ready.toClosed(cause)

	if c.upstream != nil {
		if err := c.upstream.Close(code, reason); err != nil {
			c.logger.Debug("upstream close failed", "error", err)
		}
	}
	if c.client != nil {
		if err := c.client.Close(code, reason); err != nil {
			c.logger.Debug("client close failed", "error", err)
		}
	}

	c.control = nil
	c.data = nil
	c.pendingBytes = 0
	c.downstream = nil
	c.downstreamBytes = 0
	c.upstream = nil
	c.client = nil

	c.logger.Info("relay closed", "code", code, "reason", reason)
	c.observer.ConnectionClosed(string(c.adapter.Name()), reason, time.Since(c.createdAt))
	close(c.done)
}
