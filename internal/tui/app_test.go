package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbecker/twinboard/internal/client"
	"github.com/tbecker/twinboard/internal/config"
	"github.com/tbecker/twinboard/internal/ledger"
	"github.com/tbecker/twinboard/internal/roster"
	"github.com/tbecker/twinboard/internal/simulate"
)

type fakeAPI struct {
	mu           sync.Mutex
	locations    []client.ProcessLocation
	suggestCalls []string
	syncCalls    int
	evalCalls    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		locations: []client.ProcessLocation{
			{ID: "stage-a", Label: "Stage A", AvgDurationDays: 2.0},
			{ID: "stage-b", Label: "Stage B", AvgDurationDays: 8.5, IsBottleneck: true},
			{ID: "stage-c", Label: "Stage C", AvgDurationDays: 1.2},
		},
	}
}

func (f *fakeAPI) Topology(context.Context) ([]client.ProcessLocation, error) {
	return f.locations, nil
}

func (f *fakeAPI) Suggest(_ context.Context, locationID, _ string, _ []roster.Worker) (client.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls = append(f.suggestCalls, locationID)
	return client.Suggestion{Advice: "Looks promising.", Result: simulate.Result{ImpactScore: 42}}, nil
}

func (f *fakeAPI) SyncAssignments(context.Context, []roster.Worker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls++
	return nil
}

func (f *fakeAPI) StartOptimization(context.Context) (string, error) {
	return "started", nil
}

func (f *fakeAPI) Evaluate(_ context.Context, locationID, _ string, _ []roster.Worker) (simulate.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCalls = append(f.evalCalls, locationID)
	return simulate.Result{
		CycleTimeBefore: 10, CycleTimeAfter: 6, CycleReductionPct: 40,
		ThroughputGainPct: 20, OpexIncrease: 2.5, ImpactScore: 55,
	}, nil
}

func newTestApp(t *testing.T) (*App, *fakeAPI) {
	t.Helper()
	dir := t.TempDir()
	if err := config.InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Settings.Simulation.StepDwellMs = 0
	cfg.Settings.Simulation.AnalyzeDwellMs = 0

	api := newFakeAPI()
	app, err := NewApp(cfg, WithEvaluator(api))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)

	app.Update(tea.WindowSizeMsg{Width: 110, Height: 40})
	app.Update(topologyMsg{locations: api.locations})
	return app, api
}

// drive executes a command tree synchronously and feeds every resulting
// message back into Update, the way the bubbletea runtime would.
func drive(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drive(t, app, c)
		}
		return
	}
	_, next := app.Update(msg)
	drive(t, app, next)
}

func TestTopologyBuildsBoard(t *testing.T) {
	app, _ := newTestApp(t)

	if !app.loaded {
		t.Fatal("expected app to be loaded after topology")
	}
	if got := len(app.ledger.Pool()); got != len(roster.Defaults()) {
		t.Fatalf("expected full pool, got %d workers", got)
	}
	if app.labels["stage-b"] != "Stage B" {
		t.Fatalf("labels not populated: %v", app.labels)
	}
	view := app.View()
	if !strings.Contains(view, "Stage B") || !strings.Contains(view, "bottleneck") {
		t.Fatal("board view missing topology content")
	}
}

func TestMouseDragAssignsWorker(t *testing.T) {
	app, api := newTestApp(t)
	first := app.ledger.Pool()[0]

	// Press on the first pool row.
	app.Update(tea.MouseMsg{
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
		X: app.poolRect.x0 + 2, Y: app.poolRect.y0,
	})
	if app.drag == nil || app.drag.workerID != first.ID {
		t.Fatalf("expected drag on %s, got %+v", first.ID, app.drag)
	}
	if !app.scroll.Active() {
		t.Fatal("auto-scroll should engage on drag start")
	}

	// Release on the first location header: insert at the front.
	_, cmd := app.Update(tea.MouseMsg{
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft,
		X: app.assignRect.x0 + 2, Y: app.assignRect.y0,
	})
	drive(t, app, cmd)

	if app.scroll.Active() {
		t.Fatal("auto-scroll must stop on release")
	}
	seq := app.ledger.Workers("stage-a")
	if len(seq) != 1 || seq[0].ID != first.ID {
		t.Fatalf("expected %s on stage-a, got %v", first.ID, seq)
	}
	if len(api.suggestCalls) != 1 || api.suggestCalls[0] != "stage-a" {
		t.Fatalf("expected one suggestion call for stage-a, got %v", api.suggestCalls)
	}
	if api.syncCalls != 1 {
		t.Fatalf("expected one assignment sync, got %d", api.syncCalls)
	}
}

func TestDropOutsideBoardAbandonsGesture(t *testing.T) {
	app, api := newTestApp(t)
	poolBefore := len(app.ledger.Pool())

	app.Update(tea.MouseMsg{
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
		X: app.poolRect.x0 + 2, Y: app.poolRect.y0,
	})
	_, cmd := app.Update(tea.MouseMsg{
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft,
		X: app.width - 1, Y: 0,
	})
	drive(t, app, cmd)

	if got := len(app.ledger.Pool()); got != poolBefore {
		t.Fatalf("pool changed on abandoned drop: %d != %d", got, poolBefore)
	}
	if api.syncCalls != 0 {
		t.Fatal("abandoned gesture must not sync")
	}
}

func TestKeyboardGrabAndDrop(t *testing.T) {
	app, _ := newTestApp(t)
	first := app.ledger.Pool()[0]

	// Grab the first pool worker.
	app.Update(tea.KeyMsg{Type: tea.KeySpace})
	if app.grabbed == nil || app.grabbed.workerID != first.ID {
		t.Fatalf("expected grab on %s", first.ID)
	}

	// Move to the assignments column and drop on the first header row.
	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeySpace})
	drive(t, app, cmd)

	if app.grabbed != nil {
		t.Fatal("grab should clear after drop")
	}
	seq := app.ledger.Workers("stage-a")
	if len(seq) != 1 || seq[0].ID != first.ID {
		t.Fatalf("expected %s on stage-a, got %v", first.ID, seq)
	}
}

func TestReturnToPoolKey(t *testing.T) {
	app, _ := newTestApp(t)
	first := app.ledger.Pool()[0]
	app.ledger, _ = ledger.Move(app.ledger, ledger.MoveRequest{
		WorkerID: first.ID, Source: ledger.PoolID, SourceIndex: 0,
		Dest: "stage-a", DestIndex: 0,
	})
	app.refreshBoard()

	app.switchRegion(regionAssignments)
	app.sel.row = 1 // header is row 0, the worker sits under it
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	drive(t, app, cmd)

	if got := len(app.ledger.Workers("stage-a")); got != 0 {
		t.Fatalf("worker should have left stage-a, %d remain", got)
	}
	pool := app.ledger.Pool()
	if pool[len(pool)-1].ID != first.ID {
		t.Fatal("returned worker must append to the pool")
	}
}

func TestWhatIfRunToCompletion(t *testing.T) {
	app, api := newTestApp(t)
	first := app.ledger.Pool()[0]
	app.ledger, _ = ledger.Move(app.ledger, ledger.MoveRequest{
		WorkerID: first.ID, Source: ledger.PoolID, SourceIndex: 0,
		Dest: "stage-b", DestIndex: 0,
	})
	app.refreshBoard()

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	drive(t, app, cmd)

	if got := app.orch.Phase(); got != simulate.PhaseComplete {
		t.Fatalf("expected complete run, phase %v", got)
	}
	if len(api.evalCalls) != 1 || api.evalCalls[0] != "stage-b" {
		t.Fatalf("expected one evaluation of stage-b, got %v", api.evalCalls)
	}

	view := app.View()
	if !strings.Contains(view, "OVERALL") || !strings.Contains(view, "Stage B") {
		t.Fatal("results modal missing aggregate section")
	}

	// Dismiss restores the board.
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := app.orch.Phase(); got != simulate.PhaseIdle {
		t.Fatalf("expected idle after dismiss, phase %v", got)
	}
}

func TestRunWithEmptyBoardRefused(t *testing.T) {
	app, api := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	drive(t, app, cmd)

	if got := app.orch.Phase(); got != simulate.PhaseIdle {
		t.Fatalf("empty run must stay idle, phase %v", got)
	}
	if len(api.evalCalls) != 0 {
		t.Fatal("nothing should be evaluated")
	}
	if len(app.feed.Active(time.Now())) == 0 {
		t.Fatal("refusal should raise a toast")
	}
}

func TestModalSwallowsBoardKeys(t *testing.T) {
	app, _ := newTestApp(t)
	first := app.ledger.Pool()[0]
	app.ledger, _ = ledger.Move(app.ledger, ledger.MoveRequest{
		WorkerID: first.ID, Source: ledger.PoolID, SourceIndex: 0,
		Dest: "stage-a", DestIndex: 0,
	})
	steps := []simulate.Step{{LocationID: "stage-a", Label: "Stage A", Workers: app.ledger.Workers("stage-a")}}
	if err := app.orch.Begin(steps); err != nil {
		t.Fatalf("begin: %v", err)
	}

	poolBefore := len(app.ledger.Pool())
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeySpace})
	drive(t, app, cmd)
	if got := len(app.ledger.Pool()); got != poolBefore {
		t.Fatal("board keys must be inert while the modal is up")
	}
}
