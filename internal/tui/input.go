// internal/tui/input.go
//
// Input translation: keys and mouse gestures become ledger moves,
// orchestrator runs, and chat sends. The mouse path and the keyboard
// grab/drop path both end in the same drag transfer protocol.

package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbecker/twinboard/internal/ledger"
	"github.com/tbecker/twinboard/internal/notify"
	"github.com/tbecker/twinboard/internal/roster"
	"github.com/tbecker/twinboard/internal/simulate"
)

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// The modal owns the keyboard while a run is visible.
	if a.orch.Phase() != simulate.PhaseIdle {
		if key == "enter" || key == "esc" {
			a.orch.Dismiss() // no-op unless the run is complete
		}
		return a, nil
	}

	if a.focus == focusChat {
		return a.handleChatKey(msg)
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		a.focus = focusChat
		a.chatInput.Focus()
		return a, nil
	case "up", "k":
		a.moveCursor(-1)
	case "down", "j":
		a.moveCursor(1)
	case "left", "h":
		a.switchRegion(regionPool)
	case "right", "l":
		a.switchRegion(regionAssignments)
	case " ", "enter":
		return a.grabOrDrop()
	case "esc":
		if a.grabbed != nil {
			a.grabbed = nil
			a.refreshBoard()
		}
	case "p":
		return a.returnSelectedToPool()
	case "s":
		return a.startRun()
	case "o":
		a.log.Info("Optimization requested")
		return a, a.optimizeCmd()
	case "r":
		if a.topoErr != nil {
			return a, a.fetchTopology()
		}
	}
	return a, nil
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		a.focus = focusBoard
		a.chatInput.Blur()
		return a, nil
	case "enter":
		text := strings.TrimSpace(a.chatInput.Value())
		if text == "" {
			return a, nil
		}
		a.chat.Send(text)
		a.chatInput.Reset()
		a.refreshChat()
		return a, nil
	case "ctrl+r":
		a.chat.Reset()
		a.refreshChat()
		return a, nil
	}
	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

// startRun kicks off the what-if pipeline over the non-empty assignments,
// in ledger iteration order.
func (a *App) startRun() (tea.Model, tea.Cmd) {
	if !a.loaded {
		return a, nil
	}
	assignments := a.ledger.NonEmptyAssignments()
	steps := make([]simulate.Step, 0, len(assignments))
	for _, as := range assignments {
		steps = append(steps, simulate.Step{
			LocationID: as.LocationID,
			Label:      a.labels[as.LocationID],
			Workers:    as.Workers,
		})
	}
	if err := a.orch.Begin(steps); err != nil {
		return a, nil // guard already notified
	}
	a.log.Info("What-if started · %d locations", len(steps))
	return a, a.runStepCmd()
}

// grabOrDrop is the keyboard drag: first press picks the worker under the
// cursor up, second press drops it at the cursor.
func (a *App) grabOrDrop() (tea.Model, tea.Cmd) {
	row, ok := a.selectedRow()
	if !ok {
		return a, nil
	}
	if a.grabbed == nil {
		if row.kind != rowWorker {
			return a, nil
		}
		seq := a.ledger.Workers(row.loc)
		if row.index >= len(seq) {
			return a, nil
		}
		a.grabbed = &grabState{workerID: seq[row.index].ID, from: row.loc, fromIndex: row.index}
		a.refreshBoard()
		return a, nil
	}
	grab := a.grabbed
	a.grabbed = nil
	return a, a.applyMove(ledger.MoveRequest{
		WorkerID:    grab.workerID,
		Source:      grab.from,
		SourceIndex: grab.fromIndex,
		Dest:        row.loc,
		DestIndex:   dropIndex(row, a.ledger.Workers(row.loc)),
	})
}

func (a *App) returnSelectedToPool() (tea.Model, tea.Cmd) {
	row, ok := a.selectedRow()
	if !ok || row.kind != rowWorker || row.loc == ledger.PoolID {
		return a, nil
	}
	next, outcome := ledger.ReturnToPool(a.ledger, row.loc, row.index)
	if !outcome.Applied {
		return a, nil
	}
	a.ledger = next
	a.log.Info("Returned worker to pool from %s", a.labels[row.loc])
	a.refreshBoard()
	return a, a.syncCmd(a.ledger.Assigned())
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.orch.Phase() != simulate.PhaseIdle || !a.loaded {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		a.handleWheel(msg)
		return a, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return a, nil
		}
		return a.beginDrag(msg.X, msg.Y)
	case tea.MouseActionMotion:
		if a.drag != nil {
			a.drag.x, a.drag.y = msg.X, msg.Y
			a.scroll.Pointer(msg.X, msg.Y)
		}
		return a, nil
	case tea.MouseActionRelease:
		return a.endDrag(msg.X, msg.Y)
	}
	return a, nil
}

func (a *App) handleWheel(msg tea.MouseMsg) {
	lines := 3
	if msg.Button == tea.MouseButtonWheelUp {
		lines = -3
	}
	switch {
	case a.assignRect.contains(msg.X, msg.Y):
		scrollViewport(&a.assignVP, lines)
	case a.poolRect.contains(msg.X, msg.Y):
		scrollViewport(&a.poolVP, lines)
	}
}

func (a *App) beginDrag(x, y int) (tea.Model, tea.Cmd) {
	row, ok := a.hitTest(x, y)
	if !ok || row.kind != rowWorker {
		return a, nil
	}
	seq := a.ledger.Workers(row.loc)
	if row.index >= len(seq) {
		return a, nil
	}
	a.drag = &dragState{workerID: seq[row.index].ID, from: row.loc, fromIndex: row.index, x: x, y: y}
	a.scroll.Start()
	a.scroll.Pointer(x, y)
	return a, a.scheduleScrollFrame()
}

func (a *App) endDrag(x, y int) (tea.Model, tea.Cmd) {
	if a.drag == nil {
		return a, nil
	}
	drag := a.drag
	a.drag = nil
	a.scroll.Stop() // scrolling halts this instant, wherever the pointer is

	row, ok := a.hitTest(x, y)
	if !ok {
		return a, nil // dropped outside both regions: gesture abandoned
	}
	return a, a.applyMove(ledger.MoveRequest{
		WorkerID:    drag.workerID,
		Source:      drag.from,
		SourceIndex: drag.fromIndex,
		Dest:        row.loc,
		DestIndex:   dropIndex(row, a.ledger.Workers(row.loc)),
	})
}

// applyMove runs the drag transfer protocol and schedules the follow-up
// calls: assignment sync always, the advisory suggestion when the
// destination grew.
func (a *App) applyMove(req ledger.MoveRequest) tea.Cmd {
	next, outcome := ledger.Move(a.ledger, req)
	if !outcome.Applied {
		return nil // stale gesture: silently ignored
	}
	a.ledger = next
	a.refreshBoard()

	cmds := []tea.Cmd{a.syncCmd(a.ledger.Assigned())}
	if outcome.SuggestionWanted {
		label := a.labels[req.Dest]
		workers := a.ledger.Workers(req.Dest)
		a.feed.Notify("Assigned to "+label+" — evaluating impact…", notify.LevelSuccess, 3*time.Second)
		a.log.Info("Assignment · %s now staffed by %d", label, len(workers))
		cmds = append(cmds, a.suggestCmd(req.Dest, label, workers))
	}
	return tea.Batch(cmds...)
}

// dropIndex converts the row under the pointer into an insertion index.
func dropIndex(row rowRef, seq []roster.Worker) int {
	switch row.kind {
	case rowHeader:
		return 0
	case rowWorker:
		return row.index
	default:
		return len(seq)
	}
}
