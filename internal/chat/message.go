package chat

import "time"

// Sender identifies which side of the conversation wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry in the append-only conversation log.
type Message struct {
	ID     string
	Text   string
	Sender Sender
	At     time.Time
}

// Greeting is the fixed opening message; Reset restores the log to exactly
// this one entry.
const Greeting = "Hi! I can explain the process map, its bottlenecks, and your what-if results. Ask me anything."
