package client

import (
	"sync"
	"time"

	"github.com/castillofj/touchline/pkg/messages"
)

const (
	// DefaultThrottleWindow allows roughly 20 updates per second per key.
	DefaultThrottleWindow = 50 * time.Millisecond
	// throttleMaxKeys bounds the last-sent map; stale entries are evicted
	// once it fills up.
	throttleMaxKeys = 1024
)

// Sender is the outbound half of a Channel.
type Sender interface {
	Send(msg *messages.Message)
}

// Emitter rate-limits outbound messages per key, e.g. per dragged player.
// A call inside the window is dropped entirely, not queued or coalesced:
// the next call after the window reopens carries only its own payload, so
// intermediate positions are lost by design.
type Emitter struct {
	sender Sender
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewEmitterOptions are the options for creating an Emitter.
type NewEmitterOptions struct {
	// Sender transmits the messages that pass the throttle gate.
	Sender Sender
	// Window overrides the throttle window. Zero means default.
	Window time.Duration
	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// NewEmitter creates an Emitter in front of the given sender.
func NewEmitter(opts NewEmitterOptions) *Emitter {
	window := opts.Window
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Emitter{
		sender:   opts.Sender,
		window:   window,
		now:      now,
		lastSent: make(map[string]time.Time),
	}
}

// SendThrottled transmits the message unless a message with the same key
// was sent within the throttle window. It reports whether the message was
// handed to the sender.
func (e *Emitter) SendThrottled(key string, msg *messages.Message) bool {
	now := e.now()

	e.mu.Lock()
	if last, ok := e.lastSent[key]; ok && now.Sub(last) <= e.window {
		e.mu.Unlock()
		return false
	}
	if len(e.lastSent) >= throttleMaxKeys {
		e.evictStale(now)
	}
	e.lastSent[key] = now
	e.mu.Unlock()

	e.sender.Send(msg)
	return true
}

// evictStale drops entries outside the window; they can no longer gate
// anything. Called with the lock held.
func (e *Emitter) evictStale(now time.Time) {
	for key, last := range e.lastSent {
		if now.Sub(last) > e.window {
			delete(e.lastSent, key)
		}
	}
}
