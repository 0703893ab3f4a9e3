// internal/stub/ws.go
//
// Websocket endpoints: the chat responder and the training progress feed.
// The chat responder mirrors the production contract — one text frame in,
// one text frame out, strictly single-request-at-a-time.

package stub

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tbecker/twinboard/internal/client"
)

var cannedReplies = []string{
	"Clear Invoice is the dominant bottleneck: 43.7 days average, driven by manual three-way matching.",
	"Moving an approver onto the bottleneck usually beats adding a clerk; approval authority is the scarce resource here.",
	"Throughput is currently limited by invoice clearing, not goods receipt. Staff accordingly.",
	"Your latest what-if reduced average cycle time; opex grows linearly with each assigned worker.",
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Error("chat accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "chat ended")

	s.log.Info("chat client connected", "remote", r.RemoteAddr)
	ctx := r.Context()
	replyIdx := 0
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.log.Info("chat client gone", "error", err)
			return
		}
		reply := answer(string(data), &replyIdx)
		// A short think pause keeps the client's pending indicator honest.
		select {
		case <-time.After(300 * time.Millisecond):
		case <-ctx.Done():
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
			s.log.Info("chat write failed", "error", err)
			return
		}
	}
}

func answer(question string, idx *int) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "bottleneck"):
		return cannedReplies[0]
	case strings.Contains(q, "who") || strings.Contains(q, "worker") || strings.Contains(q, "assign"):
		return cannedReplies[1]
	}
	reply := cannedReplies[*idx%len(cannedReplies)]
	*idx++
	return reply
}

func (s *Server) handleTraining(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Error("training accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "training feed done")

	ctx := r.Context()
	total := s.trainingSteps
	reward := -12.0
	for step := 1; step <= total; step++ {
		reward += 1.4 // the stub's agent learns monotonically
		frame := client.TrainingFrame{
			Type:   "progress",
			Step:   step,
			Total:  total,
			Pct:    round1(float64(step) / float64(total) * 100),
			Reward: round1(reward),
		}
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			return
		}
		if !s.sleepCtx(ctx, s.trainingInterval) {
			return
		}
	}
	_ = wsjson.Write(ctx, conn, client.TrainingFrame{Type: "complete", Step: total, Total: total, Pct: 100, Reward: round1(reward)})

	s.mu.Lock()
	s.training = false
	s.mu.Unlock()
}

func (s *Server) sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
