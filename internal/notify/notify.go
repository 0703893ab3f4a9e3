// internal/notify/notify.go
//
// The notify sink reports user-facing state transitions (assignment made,
// run failed, transport disconnected). It is an injected dependency, not an
// ambient global: the orchestrator and the chat transport receive a
// Notifier and never know who renders the toasts.

package notify

import (
	"sync"
	"time"
)

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// String returns the level tag used in logs and toast styling.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier is the sink interface the core components publish to.
type Notifier interface {
	Notify(message string, level Level, duration time.Duration)
}

// Func adapts a plain function to Notifier.
type Func func(message string, level Level, duration time.Duration)

func (f Func) Notify(message string, level Level, duration time.Duration) {
	f(message, level, duration)
}

// Toast is one queued notification with its expiry window.
type Toast struct {
	Message  string
	Level    Level
	Duration time.Duration
	At       time.Time
}

// Expired reports whether the toast's display window has passed.
func (t Toast) Expired(now time.Time) bool {
	return now.After(t.At.Add(t.Duration))
}

// Feed is the default Notifier: a bounded in-memory toast queue the view
// layer drains on its own schedule.
type Feed struct {
	mu     sync.Mutex
	toasts []Toast
	max    int
	now    func() time.Time
}

// NewFeed creates a feed retaining at most max pending toasts.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = 8
	}
	return &Feed{max: max, now: time.Now}
}

func (f *Feed) Notify(message string, level Level, duration time.Duration) {
	if duration <= 0 {
		duration = 4 * time.Second
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, Toast{Message: message, Level: level, Duration: duration, At: f.now()})
	if len(f.toasts) > f.max {
		f.toasts = f.toasts[len(f.toasts)-f.max:]
	}
}

// Active drops expired toasts and returns the live ones, oldest first.
func (f *Feed) Active(now time.Time) []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.toasts[:0]
	for _, t := range f.toasts {
		if !t.Expired(now) {
			live = append(live, t)
		}
	}
	f.toasts = live
	return append([]Toast(nil), live...)
}
