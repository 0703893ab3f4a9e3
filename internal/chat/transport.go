// internal/chat/transport.go
//
// The realtime chat transport: one persistent text-frame channel to the
// assistant, a three-state connection machine, and the conversation log.
// The remote responder answers one request at a time, so inbound frames
// carry no correlation id; each one is appended as the answer to the most
// recent outstanding user message.
//
// Reconnection policy: a single delayed attempt after mount as a safety
// net, plus one immediate attempt whenever a send finds the link down.
// There is no retry loop and no backoff; a failed attempt simply leaves
// the state Disconnected until the user acts again.

package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/tbecker/twinboard/internal/notify"
)

// State is the transport's connection state.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

// String returns the badge label for the chat panel.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "offline"
	default:
		return "connecting"
	}
}

// EventKind classifies transport events delivered to the view loop.
type EventKind int

const (
	// EventStateChanged fires on every connection state transition.
	EventStateChanged EventKind = iota
	// EventMessage fires when the conversation log grows.
	EventMessage
)

// Event is a wake-up signal for the view loop; consumers re-read the
// transport's snapshot accessors rather than trusting stale payloads.
type Event struct {
	Kind  EventKind
	State State
}

// Conn is the minimal frame channel the transport needs. The production
// implementation wraps coder/websocket; tests substitute their own.
type Conn interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
	Close() error
}

// Dialer opens a Conn; injectable for tests.
type Dialer func(ctx context.Context, url string) (Conn, error)

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadText(ctx context.Context) (string, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *wsConn) WriteText(ctx context.Context, text string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(text))
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "chat closed")
}

func dialWebsocket(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// Option tweaks a Transport.
type Option func(*Transport)

// WithDialer substitutes the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(t *Transport) { t.dial = d }
}

// WithReconnectDelay sets the post-mount safety-net reconnect delay.
func WithReconnectDelay(d time.Duration) Option {
	return func(t *Transport) { t.reconnectDelay = d }
}

// Transport owns the chat channel, its connection state, and the message
// log. All exported methods are safe for concurrent use.
type Transport struct {
	mu       sync.Mutex
	url      string
	dial     Dialer
	state    State
	conn     Conn
	messages []Message
	pending  bool
	seq      int
	gen      int // connection generation, invalidates stale read loops

	notifier       notify.Notifier
	reconnectDelay time.Duration
	events         chan Event
	ctx            context.Context
	cancel         context.CancelFunc
}

// New creates a transport for the given websocket URL. The log starts with
// the greeting; the connection starts on Start.
func New(url string, notifier notify.Notifier, opts ...Option) *Transport {
	t := &Transport{
		url:            url,
		dial:           dialWebsocket,
		state:          StateConnecting,
		notifier:       notifier,
		reconnectDelay: 3 * time.Second,
		events:         make(chan Event, 16),
	}
	t.messages = []Message{t.newMessageLocked(Greeting, SenderAssistant)}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Start opens the channel and schedules the single safety-net reconnect.
func (t *Transport) Start(ctx context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.state = StateConnecting
	delay := t.reconnectDelay
	t.mu.Unlock()

	t.emit(EventStateChanged)
	go t.connect()
	time.AfterFunc(delay, func() {
		if t.State() == StateDisconnected {
			t.Reconnect()
		}
	})
}

// Close tears the transport down.
func (t *Transport) Close() {
	t.mu.Lock()
	cancel := t.cancel
	conn := t.conn
	t.conn = nil
	t.gen++
	t.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	if cancel != nil {
		cancel()
	}
}

// Events returns the wake-up channel for the view loop.
func (t *Transport) Events() <-chan Event {
	return t.events
}

// State returns the current connection state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Pending reports whether a user message is awaiting its answer.
func (t *Transport) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Messages returns a copy of the conversation log.
func (t *Transport) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// Send records the user's message optimistically and transmits it if the
// link is up. When it is not, exactly one synthetic warning is appended
// alongside the user's text — never a duplicate of it — and a single
// reconnect attempt is made.
func (t *Transport) Send(text string) {
	t.mu.Lock()
	t.messages = append(t.messages, t.newMessageLocked(text, SenderUser))
	connected := t.state == StateConnected
	conn := t.conn
	ctx := t.ctx
	if connected {
		t.pending = true
	} else {
		t.messages = append(t.messages, t.newMessageLocked(
			"Assistant link is down — reconnecting. Your message was kept locally.", SenderAssistant))
	}
	t.mu.Unlock()
	t.emit(EventMessage)

	if connected {
		go func() {
			if err := conn.WriteText(ctx, text); err != nil {
				t.dropConnection(fmt.Errorf("chat send: %w", err))
			}
		}()
		return
	}
	t.Reconnect()
}

// Reconnect makes one dial attempt unless the link is already up or being
// brought up.
func (t *Transport) Reconnect() {
	t.mu.Lock()
	if t.state != StateDisconnected || t.ctx == nil {
		t.mu.Unlock()
		return
	}
	t.state = StateConnecting
	t.mu.Unlock()
	t.emit(EventStateChanged)
	go t.connect()
}

// Reset clears the conversation back to the greeting. Connection state is
// untouched.
func (t *Transport) Reset() {
	t.mu.Lock()
	t.messages = []Message{t.newMessageLocked(Greeting, SenderAssistant)}
	t.pending = false
	t.mu.Unlock()
	t.emit(EventMessage)
}

func (t *Transport) connect() {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	conn, err := t.dial(ctx, t.url)

	t.mu.Lock()
	if t.ctx == nil || t.ctx.Err() != nil {
		t.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		t.state = StateDisconnected
		t.mu.Unlock()
		t.emit(EventStateChanged)
		t.notifier.Notify("Assistant is offline.", notify.LevelWarn, 0)
		return
	}
	t.conn = conn
	t.state = StateConnected
	t.gen++
	gen := t.gen
	t.mu.Unlock()
	t.emit(EventStateChanged)

	go t.readLoop(ctx, conn, gen)
}

// readLoop appends every inbound frame as an assistant message and clears
// the pending indicator. The responder is single-request-at-a-time, so
// display order is preserved without correlation ids.
func (t *Transport) readLoop(ctx context.Context, conn Conn, gen int) {
	for {
		text, err := conn.ReadText(ctx)
		if err != nil {
			t.mu.Lock()
			stale := t.gen != gen
			t.mu.Unlock()
			if !stale {
				t.dropConnection(fmt.Errorf("chat receive: %w", err))
			}
			return
		}
		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.messages = append(t.messages, t.newMessageLocked(text, SenderAssistant))
		t.pending = false
		t.mu.Unlock()
		t.emit(EventMessage)
	}
}

func (t *Transport) dropConnection(cause error) {
	t.mu.Lock()
	if t.state != StateConnected {
		t.mu.Unlock()
		return
	}
	conn := t.conn
	t.conn = nil
	t.state = StateDisconnected
	t.gen++
	t.pending = false
	t.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	t.emit(EventStateChanged)
	t.notifier.Notify(fmt.Sprintf("Assistant disconnected: %v", cause), notify.LevelWarn, 0)
}

// newMessageLocked mints a log entry; callers hold t.mu (or own t
// exclusively during construction).
func (t *Transport) newMessageLocked(text string, sender Sender) Message {
	t.seq++
	return Message{
		ID:     fmt.Sprintf("m-%d", t.seq),
		Text:   text,
		Sender: sender,
		At:     time.Now(),
	}
}

func (t *Transport) emit(kind EventKind) {
	select {
	case t.events <- Event{Kind: kind, State: t.State()}:
	default:
		// The view loop is behind; it re-reads full snapshots anyway.
	}
}
