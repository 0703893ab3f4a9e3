// internal/ledger/ledger.go
//
// The assignment ledger is the authoritative mapping of workers to process
// locations. Every known worker sits in exactly one location's sequence at
// all times; the reserved pool holds whoever is unassigned.
//
// Ledgers are value types: mutations return a new Ledger so mid-render
// readers always see a consistent snapshot. The only mutation paths are the
// drag transfer protocol in move.go and ReturnToPool.

package ledger

import (
	"fmt"

	"github.com/tbecker/twinboard/internal/roster"
)

// PoolID is the reserved location id for unassigned workers.
const PoolID = "pool"

// Ledger maps location ids to ordered worker sequences. The zero value is
// empty and unusable; construct with New.
type Ledger struct {
	order []string
	seqs  map[string][]roster.Worker
}

// Assignment is one location's slice of the ledger, pool excluded.
type Assignment struct {
	LocationID string
	Workers    []roster.Worker
}

// New builds a ledger with the given process locations and every worker in
// the pool. Location order is preserved for deterministic iteration.
func New(locationIDs []string, workers []roster.Worker) Ledger {
	order := make([]string, 0, len(locationIDs)+1)
	seqs := make(map[string][]roster.Worker, len(locationIDs)+1)
	order = append(order, PoolID)
	seqs[PoolID] = append([]roster.Worker(nil), workers...)
	for _, id := range locationIDs {
		if id == PoolID {
			continue
		}
		if _, ok := seqs[id]; ok {
			continue
		}
		order = append(order, id)
		seqs[id] = nil
	}
	return Ledger{order: order, seqs: seqs}
}

// Locations returns the location ids in iteration order, pool first.
func (l Ledger) Locations() []string {
	return append([]string(nil), l.order...)
}

// Workers returns a copy of one location's sequence.
func (l Ledger) Workers(locationID string) []roster.Worker {
	return append([]roster.Worker(nil), l.seqs[locationID]...)
}

// Pool returns the unassigned workers.
func (l Ledger) Pool() []roster.Worker {
	return l.Workers(PoolID)
}

// Assigned returns every worker currently placed on a process location, in
// ledger iteration order.
func (l Ledger) Assigned() []roster.Worker {
	var out []roster.Worker
	for _, id := range l.order {
		if id == PoolID {
			continue
		}
		out = append(out, l.seqs[id]...)
	}
	return out
}

// NonEmptyAssignments returns the process locations that currently hold at
// least one worker, in ledger iteration order.
func (l Ledger) NonEmptyAssignments() []Assignment {
	var out []Assignment
	for _, id := range l.order {
		if id == PoolID || len(l.seqs[id]) == 0 {
			continue
		}
		out = append(out, Assignment{LocationID: id, Workers: l.Workers(id)})
	}
	return out
}

// Validate checks the exactly-one-location invariant against the full
// worker set: the multiset union of all sequences must equal the roster.
func (l Ledger) Validate(all []roster.Worker) error {
	want := make(map[string]int, len(all))
	for _, w := range all {
		want[w.ID]++
	}
	got := map[string]int{}
	for _, id := range l.order {
		for _, w := range l.seqs[id] {
			got[w.ID]++
		}
	}
	for id, n := range want {
		if got[id] != n {
			return fmt.Errorf("ledger invariant broken: worker %s appears %d times, want %d", id, got[id], n)
		}
	}
	for id := range got {
		if _, ok := want[id]; !ok {
			return fmt.Errorf("ledger invariant broken: unknown worker %s present", id)
		}
	}
	return nil
}

// clone produces an independent copy sharing nothing with the receiver.
func (l Ledger) clone() Ledger {
	seqs := make(map[string][]roster.Worker, len(l.seqs))
	for id, seq := range l.seqs {
		seqs[id] = append([]roster.Worker(nil), seq...)
	}
	return Ledger{order: append([]string(nil), l.order...), seqs: seqs}
}
