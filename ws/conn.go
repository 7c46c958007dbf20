package ws

import (
	"fmt"
	"log/slog"
	"sync"

	"grant-desk/contract"
	"grant-desk/domain"
	"grant-desk/errors"
	"grant-desk/observability"
)

// transport is the subset of *websocket.Conn the connection loop needs,
// abstracted so tests can drive the state machine without a socket.
type transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Searcher answers full-text queries over the message history.
type Searcher interface {
	SearchMessages(query string, limit int) ([]domain.ChatMessage, error)
}

// Conn owns one client connection for its whole lifetime: Connected
// until a valid auth frame arrives, then Authenticated until the
// transport drops or Close is called. All transport writes go through
// the outbound channel and a single write pump, so the relay and the
// read loop never contend on the socket.
//
// Conn is the relay's Sink for this connection: Deliver enqueues and
// never blocks, dropping on overflow.
type Conn struct {
	log      *slog.Logger
	tr       transport
	relay    contract.IRelay
	verifier contract.TokenVerifier
	searcher Searcher
	stats    *observability.RelayStats

	participant domain.Participant
	authed      bool

	outbound  chan any
	done      chan struct{}
	closeOnce sync.Once
}

func NewConn(log *slog.Logger, tr transport, relay contract.IRelay,
	verifier contract.TokenVerifier, stats *observability.RelayStats, bufferSize int) *Conn {
	return &Conn{
		log:      log,
		tr:       tr,
		relay:    relay,
		verifier: verifier,
		stats:    stats,
		outbound: make(chan any, bufferSize),
		done:     make(chan struct{}),
	}
}

// WithSearcher enables the searchHistory frame for this connection.
func (c *Conn) WithSearcher(s Searcher) *Conn {
	c.searcher = s
	return c
}

// Deliver queues one message copy for the client. It never blocks the
// relay: a full buffer means the copy is dropped and reported.
func (c *Conn) Deliver(msg domain.ChatMessage) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection closed")
	default:
	}

	select {
	case c.outbound <- NewMessageFrame(msg):
		return nil
	default:
		return fmt.Errorf("outbound buffer full")
	}
}

// Close initiates shutdown. Idempotent: the first call signals the
// write pump, which flushes queued frames and releases the transport,
// unblocking the read loop.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// Run services the connection until it closes: one write pump goroutine
// plus this sequential read loop. Directory cleanup is unconditional on
// exit, so a dropped transport can never leave a stale registration.
func (c *Conn) Run() {
	go c.writePump()
	defer c.relay.Detach(c)
	defer c.Close()

	for {
		_, raw, err := c.tr.ReadMessage()
		if err != nil {
			c.log.Debug("Connection closed", "user_id", c.participant.ID, "reason", err)
			return
		}

		frame, err := DecodeInbound(raw)
		if err != nil {
			// Malformed frames are logged and ignored, the connection
			// stays open awaiting the next frame.
			c.stats.IncrMalformedFrames()
			c.log.Warn("Ignoring malformed frame", "error", err)
			continue
		}

		if err := c.handleFrame(frame); err != nil {
			c.log.Warn("Closing connection", "reason", err)
			return
		}
	}
}

// handleFrame dispatches one decoded frame. A non-nil return is fatal
// for the connection; every recoverable condition is answered with an
// error frame instead.
func (c *Conn) handleFrame(f InboundFrame) error {
	if f.Type == FrameAuth {
		return c.handleAuth(f)
	}

	if !c.authed {
		c.send(NewErrorFrame(errors.ErrUnauthenticated.Error()))
		return nil
	}

	switch f.Type {
	case FrameSend:
		c.handleSend(f)
	case FrameGetHistory:
		c.handleGetHistory(f)
	case FrameSearchHistory:
		c.handleSearch(f)
	}
	return nil
}

// handleAuth verifies the token, registers the connection, and replays
// the participant's history. The client-supplied userId is ignored: the
// identity bound to this connection comes from the verified token only.
func (c *Conn) handleAuth(f InboundFrame) error {
	p, err := c.verifier.Verify(f.Token)
	if err != nil {
		c.stats.IncrAuthFailures()
		c.send(NewAuthErrorFrame("authentication failed"))
		return err
	}

	// A connection binds at most one identity. Re-authenticating under
	// a new token releases the previous registration first, so the old
	// identifier neither appears online nor keeps receiving copies.
	if c.authed {
		c.relay.Detach(c)
	}

	c.participant = p
	c.authed = true
	c.relay.Attach(p, c)
	c.log.Info("Connection authenticated", "user_id", p.ID, "role", p.Role)

	c.send(NewHistoryFrame(c.relay.ReplayFor(p)))
	return nil
}

func (c *Conn) handleSend(f InboundFrame) {
	if _, err := c.relay.Send(c.participant.ID, f.Message, f.TargetUserID); err != nil {
		c.send(NewErrorFrame(err.Error()))
	}
}

func (c *Conn) handleGetHistory(f InboundFrame) {
	c.send(NewHistoryFrame(c.relay.Conversation(c.participant.ID, *f.TargetUserID)))
}

func (c *Conn) handleSearch(f InboundFrame) {
	if !c.participant.IsAdmin() {
		c.send(NewErrorFrame("search is restricted to administrators"))
		return
	}
	if c.searcher == nil {
		c.send(NewErrorFrame("search is not available"))
		return
	}

	hits, err := c.searcher.SearchMessages(f.Query, f.Limit)
	if err != nil {
		c.log.Error("History search failed", "query", f.Query, "error", err)
		c.send(NewErrorFrame("search failed"))
		return
	}
	c.send(NewSearchResultFrame(f.Query, hits))
}

// send enqueues an outbound frame, dropping it when the client cannot
// keep up. Only the write pump touches the transport.
func (c *Conn) send(frame any) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.outbound <- frame:
	default:
		c.log.Warn("Outbound buffer full, dropping frame", "user_id", c.participant.ID)
	}
}

// writePump is the single writer to the transport. On shutdown it
// flushes frames already queued (the auth-error of a failed handshake
// must reach the client) before releasing the transport.
func (c *Conn) writePump() {
	for {
		select {
		case frame := <-c.outbound:
			if err := c.tr.WriteJSON(frame); err != nil {
				c.log.Debug("Write failed, closing connection", "error", err)
				_ = c.Close()
				_ = c.tr.Close()
				return
			}
		case <-c.done:
			for {
				select {
				case frame := <-c.outbound:
					_ = c.tr.WriteJSON(frame)
				default:
					_ = c.tr.Close()
					return
				}
			}
		}
	}
}
