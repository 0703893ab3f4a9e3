// internal/client/training.go
//
// The training progress channel: a read-only websocket feed of structured
// frames emitted while the remote RL optimization runs.

package client

import (
	"context"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// TrainingFrame is one structured progress frame.
type TrainingFrame struct {
	Type   string  `json:"type"` // "progress" or "complete"
	Step   int     `json:"step"`
	Total  int     `json:"total"`
	Pct    float64 `json:"pct"`
	Reward float64 `json:"reward"`
}

// Done reports whether this frame terminates the feed.
func (f TrainingFrame) Done() bool {
	return f.Type == "complete"
}

// WatchTraining dials the training channel and streams frames until the
// remote side closes, a terminal frame arrives, or ctx is cancelled. The
// returned channel is closed when the feed ends.
func WatchTraining(ctx context.Context, url string) (<-chan TrainingFrame, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	frames := make(chan TrainingFrame, 8)
	go func() {
		defer close(frames)
		defer conn.Close(websocket.StatusNormalClosure, "feed done")
		for {
			var frame TrainingFrame
			if err := wsjson.Read(ctx, conn, &frame); err != nil {
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
			if frame.Done() {
				return
			}
		}
	}()
	return frames, nil
}
