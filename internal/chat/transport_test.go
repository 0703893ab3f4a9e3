package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbecker/twinboard/internal/notify"
)

// fakeConn scripts the remote side of the channel.
type fakeConn struct {
	inbound chan string
	sent    chan string
	closed  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan string, 8),
		sent:    make(chan string, 8),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadText(ctx context.Context) (string, error) {
	select {
	case text := <-c.inbound:
		return text, nil
	case <-c.closed:
		return "", errors.New("connection closed")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *fakeConn) WriteText(_ context.Context, text string) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.sent <- text
	return nil
}

func (c *fakeConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}

func quietNotifier() notify.Notifier {
	return notify.Func(func(string, notify.Level, time.Duration) {})
}

func startConnected(t *testing.T) (*Transport, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	tr := New("ws://test/ws/chat", quietNotifier(),
		WithDialer(func(context.Context, string) (Conn, error) { return conn, nil }),
		WithReconnectDelay(time.Hour),
	)
	tr.Start(context.Background())
	t.Cleanup(tr.Close)
	waitForState(t, tr, StateConnected)
	return tr, conn
}

func waitForState(t *testing.T, tr *Transport, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if tr.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("transport never reached %s (state %s)", want, tr.State())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStartsConnectingThenConnects(t *testing.T) {
	conn := newFakeConn()
	dialed := make(chan struct{})
	tr := New("ws://test/ws/chat", quietNotifier(),
		WithDialer(func(context.Context, string) (Conn, error) {
			<-dialed
			return conn, nil
		}),
		WithReconnectDelay(time.Hour),
	)
	tr.Start(context.Background())
	t.Cleanup(tr.Close)
	if got := tr.State(); got != StateConnecting {
		t.Fatalf("initial state = %s, want connecting", got)
	}
	close(dialed)
	waitForState(t, tr, StateConnected)
	msgs := tr.Messages()
	if len(msgs) != 1 || msgs[0].Text != Greeting || msgs[0].Sender != SenderAssistant {
		t.Fatalf("log must open with the greeting, got %+v", msgs)
	}
}

func TestSendWhileConnectedTransmitsOnce(t *testing.T) {
	tr, conn := startConnected(t)
	tr.Send("why is Clear Invoice slow?")
	waitFor(t, func() bool { return len(conn.sent) == 1 }, "frame transmission")
	if got := <-conn.sent; got != "why is Clear Invoice slow?" {
		t.Fatalf("transmitted %q", got)
	}
	msgs := tr.Messages()
	if len(msgs) != 2 || msgs[1].Sender != SenderUser {
		t.Fatalf("optimistic append missing: %+v", msgs)
	}
	if !tr.Pending() {
		t.Fatalf("pending indicator should be set after send")
	}
}

func TestInboundFrameAppendsAssistantAndClearsPending(t *testing.T) {
	tr, conn := startConnected(t)
	tr.Send("question")
	conn.inbound <- "answer"
	waitFor(t, func() bool { return len(tr.Messages()) == 3 }, "assistant reply")
	msgs := tr.Messages()
	last := msgs[len(msgs)-1]
	if last.Sender != SenderAssistant || last.Text != "answer" {
		t.Fatalf("unexpected reply entry: %+v", last)
	}
	if tr.Pending() {
		t.Fatalf("pending indicator must clear on receive")
	}
}

func TestSendWhileDisconnectedAppendsExactlyTwo(t *testing.T) {
	dials := 0
	tr := New("ws://test/ws/chat", quietNotifier(),
		WithDialer(func(context.Context, string) (Conn, error) {
			dials++
			return nil, errors.New("refused")
		}),
		WithReconnectDelay(time.Hour),
	)
	tr.Start(context.Background())
	t.Cleanup(tr.Close)
	waitForState(t, tr, StateDisconnected)

	before := len(tr.Messages())
	tr.Send("hello?")
	msgs := tr.Messages()
	if len(msgs) != before+2 {
		t.Fatalf("disconnected send must append exactly two messages, got %d new", len(msgs)-before)
	}
	if msgs[before].Sender != SenderUser || msgs[before].Text != "hello?" {
		t.Fatalf("user message missing or duplicated: %+v", msgs[before])
	}
	if msgs[before+1].Sender != SenderAssistant {
		t.Fatalf("synthetic warning missing: %+v", msgs[before+1])
	}
	waitFor(t, func() bool { return dials >= 2 }, "reconnect attempt")
	waitForState(t, tr, StateDisconnected)
}

func TestSafetyNetReconnectFiresOnce(t *testing.T) {
	dials := make(chan struct{}, 8)
	tr := New("ws://test/ws/chat", quietNotifier(),
		WithDialer(func(context.Context, string) (Conn, error) {
			dials <- struct{}{}
			return nil, errors.New("refused")
		}),
		WithReconnectDelay(30*time.Millisecond),
	)
	tr.Start(context.Background())
	t.Cleanup(tr.Close)
	<-dials // mount attempt
	waitFor(t, func() bool { return len(dials) >= 1 }, "safety-net attempt")
	// Beyond the safety net there is no retry loop.
	time.Sleep(120 * time.Millisecond)
	if extra := len(dials); extra > 1 {
		t.Fatalf("expected only the single safety-net redial, saw %d extra", extra)
	}
}

func TestResetKeepsConnectionState(t *testing.T) {
	tr, conn := startConnected(t)
	tr.Send("question")
	conn.inbound <- "answer"
	waitFor(t, func() bool { return len(tr.Messages()) == 3 }, "assistant reply")

	tr.Reset()
	msgs := tr.Messages()
	if len(msgs) != 1 || msgs[0].Text != Greeting {
		t.Fatalf("reset must restore the single greeting, got %+v", msgs)
	}
	if tr.State() != StateConnected {
		t.Fatalf("reset must not touch the connection, state=%s", tr.State())
	}
}

func TestRemoteCloseDisconnects(t *testing.T) {
	tr, conn := startConnected(t)
	_ = conn.Close()
	waitForState(t, tr, StateDisconnected)
	if tr.Pending() {
		t.Fatalf("pending must clear when the link drops")
	}
}
