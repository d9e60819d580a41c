package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/castillofj/touchline/pkg/messages"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

const (
	// DefaultBackoffFloor is the initial reconnect delay.
	DefaultBackoffFloor = 1 * time.Second
	// DefaultBackoffCeiling caps the reconnect delay.
	DefaultBackoffCeiling = 30 * time.Second

	writeTimeout = 5 * time.Second
)

// ConnState represents the state of the room connection.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Handler is a callback invoked with every successfully parsed inbound message.
type Handler func(msg *messages.Message)

type subscriber struct {
	id int
	fn Handler
}

// Channel owns one live WebSocket connection to a room/client pair. It
// routes every parsed inbound message through the message router into the
// canonical store, then forwards the raw message to subscribers. Lost
// connections are re-established automatically with exponential backoff;
// the rest of the system only ever sees a connection-state signal, never
// a transport error.
type Channel struct {
	wsBaseURL      string
	router         *Router
	backoffFloor   time.Duration
	backoffCeiling time.Duration
	onStateChange  func(ConnState)

	mu          sync.Mutex
	conn        *websocket.Conn
	state       ConnState
	backoff     time.Duration
	cancel      context.CancelFunc
	subscribers []subscriber
	nextSubID   int
}

// NewChannelOptions are the options for creating a Channel.
type NewChannelOptions struct {
	// WSBaseURL is the ws:// or wss:// base the /ws endpoint hangs off of.
	WSBaseURL string
	// Router receives every inbound message before subscribers do.
	Router *Router
	// BackoffFloor overrides the initial reconnect delay. Zero means default.
	BackoffFloor time.Duration
	// BackoffCeiling overrides the maximum reconnect delay. Zero means default.
	BackoffCeiling time.Duration
	// OnStateChange, if set, is called on every connection-state transition.
	OnStateChange func(ConnState)
}

// NewChannel creates a new disconnected Channel.
func NewChannel(opts NewChannelOptions) *Channel {
	floor := opts.BackoffFloor
	if floor <= 0 {
		floor = DefaultBackoffFloor
	}
	ceiling := opts.BackoffCeiling
	if ceiling <= 0 {
		ceiling = DefaultBackoffCeiling
	}
	return &Channel{
		wsBaseURL:      opts.WSBaseURL,
		router:         opts.Router,
		backoffFloor:   floor,
		backoffCeiling: ceiling,
		onStateChange:  opts.OnStateChange,
		state:          StateDisconnected,
		backoff:        floor,
	}
}

// Connect establishes the connection for the given room/client pair. Any
// prior connection and its pending reconnect loop are superseded first, so
// calling Connect again is always safe. The connection is kept alive until
// ctx is cancelled, Close is called, or a later Connect takes over.
func (c *Channel) Connect(ctx context.Context, roomID, clientID string) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "superseded")
		c.conn = nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.backoff = c.backoffFloor
	c.mu.Unlock()

	go c.run(runCtx, roomID, clientID)
}

// Close deterministically stops the connection and any pending reconnect
// loop. The channel can be reused with a later Connect.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "closed")
		c.conn = nil
	}
	c.mu.Unlock()
	c.setState(StateDisconnected)
}

// State returns the current connection state.
func (c *Channel) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentBackoff returns the delay the next reconnect attempt would wait.
func (c *Channel) CurrentBackoff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backoff
}

// Send transmits a message if the channel is connected and silently drops
// it otherwise. Sending is best-effort: nothing is queued across
// disconnects and no error is surfaced to the caller.
func (c *Channel) Send(msg *messages.Message) {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		log.Trace().Str("type", msg.Type).Msg("dropping outbound message, not connected")
		return
	}

	b, err := messages.SerializeMessage(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("failed to serialize outbound message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		log.Debug().Err(err).Msg("failed to write message, dropping")
	}
}

// Subscribe registers a handler for every inbound message. Handlers run in
// registration order, after the router has applied the message to the
// store. The returned function deregisters the handler.
func (c *Channel) Subscribe(fn Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subscribers {
			if sub.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (c *Channel) endpoint(roomID, clientID string) string {
	return fmt.Sprintf("%s/ws/%s/%s", c.wsBaseURL, roomID, clientID)
}

// run dials and reads until the context is cancelled, sleeping the current
// backoff between attempts. The backoff doubles after every attempt up to
// the ceiling and resets to the floor only on a successful open.
func (c *Channel) run(ctx context.Context, roomID, clientID string) {
	for {
		if ctx.Err() != nil {
			return
		}

		c.setState(StateConnecting)
		url := c.endpoint(roomID, clientID)
		log.Debug().Str("url", url).Msg("connecting")

		conn, _, err := websocket.Dial(ctx, url, nil)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.backoff = c.backoffFloor
			c.mu.Unlock()
			c.setState(StateConnected)
			log.Info().Str("room_id", roomID).Str("client_id", clientID).Msg("connected")

			c.readLoop(ctx, conn)

			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			log.Info().Str("room_id", roomID).Msg("disconnected")
		} else if ctx.Err() == nil {
			log.Debug().Err(err).Str("url", url).Msg("failed to connect")
		}
		if ctx.Err() != nil {
			// Superseded or closed; the new owner controls the state now.
			return
		}
		c.setState(StateDisconnected)

		wait := c.advanceBackoff()
		log.Debug().Dur("wait", wait).Msg("scheduling reconnect")
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// advanceBackoff returns the delay to wait before the next attempt and
// doubles the stored backoff up to the ceiling.
func (c *Channel) advanceBackoff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	wait := c.backoff
	c.backoff *= 2
	if c.backoff > c.backoffCeiling {
		c.backoff = c.backoffCeiling
	}
	return wait
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				log.Debug().Msg("connection closed")
			} else if ctx.Err() == nil {
				log.Debug().Err(err).Msg("read error")
			}
			return
		}

		msg, err := messages.DeserializeMessage(data)
		if err != nil {
			// Malformed frames are dropped; they never close the connection.
			log.Warn().Err(err).Msg("dropping malformed inbound message")
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch applies the message to the store through the router, then
// forwards the raw message to every subscriber in registration order. A
// panicking subscriber does not prevent delivery to the others.
func (c *Channel) dispatch(msg *messages.Message) {
	if c.router != nil {
		c.router.Route(msg)
	}

	c.mu.Lock()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Msg("subscriber panicked")
				}
			}()
			sub.fn(msg)
		}()
	}
}

func (c *Channel) setState(state ConnState) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()
	if changed && c.onStateChange != nil {
		c.onStateChange(state)
	}
}
