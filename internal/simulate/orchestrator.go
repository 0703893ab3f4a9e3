// internal/simulate/orchestrator.go
//
// The what-if orchestrator. A run walks the non-empty assignments in
// ledger order, one remote evaluation at a time. Sequential stepping is a
// contract, not a throughput compromise: the operator watches progress
// advance location by location, so each step also holds a minimum dwell
// time regardless of how fast the network answers.

package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tbecker/twinboard/internal/notify"
	"github.com/tbecker/twinboard/internal/roster"
)

// Evaluator is the remote per-location evaluation call.
type Evaluator interface {
	Evaluate(ctx context.Context, locationID, label string, workers []roster.Worker) (Result, error)
}

// Step is one location's pending evaluation.
type Step struct {
	LocationID string
	Label      string
	Workers    []roster.Worker
}

// Progress tracks the UI-visible step counter.
type Progress struct {
	Current int
	Total   int
	Label   string
}

// Snapshot is a consistent copy of the orchestrator state for rendering.
type Snapshot struct {
	Phase     Phase
	Progress  Progress
	Results   []LocationResult
	Aggregate *Result
}

var (
	// ErrNoAssignments rejects a run with zero non-empty locations.
	ErrNoAssignments = errors.New("no workers assigned to any process location")
	// ErrRunInProgress rejects Begin while a run is already underway.
	ErrRunInProgress = errors.New("a what-if run is already in progress")
)

// Option tweaks an Orchestrator, mostly for tests.
type Option func(*Orchestrator)

// WithStepDwell sets the minimum UI-visible duration of one pipeline step.
func WithStepDwell(d time.Duration) Option {
	return func(o *Orchestrator) { o.stepDwell = d }
}

// WithAnalyzeDwell sets the fixed duration of the analyzing phase.
func WithAnalyzeDwell(d time.Duration) Option {
	return func(o *Orchestrator) { o.analyzeDwell = d }
}

// WithSleep replaces the dwell sleeper so tests can run instantly.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// Orchestrator drives the sequential simulation pipeline. Methods are safe
// to call from the view loop and from command goroutines; state is guarded
// rather than locked across remote calls.
type Orchestrator struct {
	mu        sync.Mutex
	phase     Phase
	queue     []Step
	results   []LocationResult
	aggregate *Result
	progress  Progress

	evaluator    Evaluator
	notifier     notify.Notifier
	stepDwell    time.Duration
	analyzeDwell time.Duration
	sleep        func(time.Duration)
	now          func() time.Time
}

// New creates an idle orchestrator.
func New(evaluator Evaluator, notifier notify.Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		evaluator:    evaluator,
		notifier:     notifier,
		stepDwell:    900 * time.Millisecond,
		analyzeDwell: 1200 * time.Millisecond,
		sleep:        time.Sleep,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Begin starts a run over the given steps. Steps with no workers are
// dropped; if nothing remains, the run is rejected at the guard and the
// orchestrator stays Idle.
func (o *Orchestrator) Begin(steps []Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseIdle {
		return ErrRunInProgress
	}
	queue := make([]Step, 0, len(steps))
	for _, s := range steps {
		if len(s.Workers) > 0 {
			queue = append(queue, s)
		}
	}
	if len(queue) == 0 {
		o.notifier.Notify("Assign workers to a process step before running a what-if.", notify.LevelInfo, 0)
		return ErrNoAssignments
	}
	o.phase = PhaseSimulating
	o.queue = queue
	o.results = nil
	o.aggregate = nil
	o.progress = Progress{Current: 0, Total: len(queue), Label: queue[0].Label}
	return nil
}

// RunNext executes the next pending step: remote evaluation plus the dwell
// floor. It returns done=true when the last step finished and the run
// moved to Analyzing. A failing step aborts the whole run: partial results
// are discarded and the orchestrator returns to Idle.
func (o *Orchestrator) RunNext(ctx context.Context) (done bool, err error) {
	o.mu.Lock()
	if o.phase != PhaseSimulating || len(o.queue) == 0 {
		o.mu.Unlock()
		return false, fmt.Errorf("run next: not simulating (phase %s)", o.phase)
	}
	step := o.queue[0]
	o.progress.Label = step.Label
	o.mu.Unlock()

	started := o.now()
	result, evalErr := o.evaluator.Evaluate(ctx, step.LocationID, step.Label, step.Workers)
	if remaining := o.stepDwell - o.now().Sub(started); remaining > 0 {
		o.sleep(remaining)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if evalErr != nil {
		o.resetLocked()
		o.notifier.Notify(fmt.Sprintf("Simulation failed at %s: %v", step.Label, evalErr), notify.LevelError, 6*time.Second)
		return false, fmt.Errorf("evaluate %s: %w", step.LocationID, evalErr)
	}
	o.queue = o.queue[1:]
	o.results = append(o.results, LocationResult{LocationID: step.LocationID, Label: step.Label, Result: result})
	o.progress.Current = len(o.results)
	if len(o.queue) == 0 {
		o.phase = PhaseAnalyzing
		return true, nil
	}
	return false, nil
}

// Analyze performs the fixed analysis dwell, computes the aggregate, and
// lands on Complete. It cannot fail.
func (o *Orchestrator) Analyze() {
	o.mu.Lock()
	if o.phase != PhaseAnalyzing {
		o.mu.Unlock()
		return
	}
	results := make([]Result, len(o.results))
	for i, r := range o.results {
		results[i] = r.Result
	}
	o.mu.Unlock()

	o.sleep(o.analyzeDwell)
	agg := Aggregate(results)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseAnalyzing {
		return
	}
	o.aggregate = &agg
	o.phase = PhaseComplete
}

// Dismiss clears a completed run and returns to Idle. Results are held
// indefinitely until this explicit action; there is no automatic timeout.
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseComplete {
		return
	}
	o.resetLocked()
}

// Snapshot returns a render-safe copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := Snapshot{
		Phase:    o.phase,
		Progress: o.progress,
		Results:  append([]LocationResult(nil), o.results...),
	}
	if o.aggregate != nil {
		agg := *o.aggregate
		snap.Aggregate = &agg
	}
	return snap
}

// Phase returns the current pipeline phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) resetLocked() {
	o.phase = PhaseIdle
	o.queue = nil
	o.results = nil
	o.aggregate = nil
	o.progress = Progress{}
}
