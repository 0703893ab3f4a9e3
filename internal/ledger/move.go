// internal/ledger/move.go
//
// The drag transfer protocol: translating a finished drag gesture into a
// ledger mutation. A gesture records where it picked a worker up; by the
// time it drops, the ledger may have changed underneath it, so every move
// re-checks its preconditions and degrades to a silent no-op when stale.

package ledger

import "github.com/tbecker/twinboard/internal/roster"

// MoveRequest describes a completed drag gesture.
type MoveRequest struct {
	WorkerID    string
	Source      string
	SourceIndex int
	Dest        string
	DestIndex   int
}

// Outcome reports what a move did.
type Outcome struct {
	// Applied is false when the gesture was stale and the ledger unchanged.
	Applied bool
	// SuggestionWanted is set when the destination is a process location
	// whose worker count grew: the caller should fire the one-shot advisory
	// evaluation for that location.
	SuggestionWanted bool
}

// Move applies a drag gesture to the ledger and returns the new ledger.
//
// Preconditions: the source location must hold the named worker at exactly
// SourceIndex. A request that fails them is treated as a stale gesture and
// ignored. Same-location moves are pure reorders; cross-location moves are
// atomic remove+insert. The destination index is clamped to the sequence
// length after removal.
func Move(l Ledger, req MoveRequest) (Ledger, Outcome) {
	src, ok := l.seqs[req.Source]
	if !ok {
		return l, Outcome{}
	}
	if req.SourceIndex < 0 || req.SourceIndex >= len(src) {
		return l, Outcome{}
	}
	if src[req.SourceIndex].ID != req.WorkerID {
		return l, Outcome{}
	}
	if _, ok := l.seqs[req.Dest]; !ok {
		return l, Outcome{}
	}

	next := l.clone()
	worker := next.seqs[req.Source][req.SourceIndex]
	next.seqs[req.Source] = deleteAt(next.seqs[req.Source], req.SourceIndex)

	destBefore := len(l.seqs[req.Dest])
	idx := clamp(req.DestIndex, 0, len(next.seqs[req.Dest]))
	next.seqs[req.Dest] = insertAt(next.seqs[req.Dest], idx, worker)

	outcome := Outcome{Applied: true}
	if req.Dest != PoolID && req.Dest != req.Source && len(next.seqs[req.Dest]) > destBefore {
		outcome.SuggestionWanted = true
	}
	return next, outcome
}

// ReturnToPool moves the worker at index within locationID back to the end
// of the pool. It shares Move's stale-gesture semantics.
func ReturnToPool(l Ledger, locationID string, index int) (Ledger, Outcome) {
	seq, ok := l.seqs[locationID]
	if !ok || locationID == PoolID || index < 0 || index >= len(seq) {
		return l, Outcome{}
	}
	return Move(l, MoveRequest{
		WorkerID:    seq[index].ID,
		Source:      locationID,
		SourceIndex: index,
		Dest:        PoolID,
		DestIndex:   len(l.seqs[PoolID]),
	})
}

func deleteAt(seq []roster.Worker, i int) []roster.Worker {
	out := make([]roster.Worker, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	return append(out, seq[i+1:]...)
}

func insertAt(seq []roster.Worker, i int, w roster.Worker) []roster.Worker {
	out := make([]roster.Worker, 0, len(seq)+1)
	out = append(out, seq[:i]...)
	out = append(out, w)
	return append(out, seq[i:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
