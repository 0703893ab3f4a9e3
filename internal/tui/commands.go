// internal/tui/commands.go
//
// tea.Cmd constructors: every remote call and recurring tick the App
// schedules. Commands run in their own goroutines and report back as
// messages; they never touch the model directly.

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbecker/twinboard/internal/client"
	"github.com/tbecker/twinboard/internal/roster"
)

func (a *App) fetchTopology() tea.Cmd {
	return func() tea.Msg {
		locations, err := a.api.Topology(a.ctx)
		return topologyMsg{locations: locations, err: err}
	}
}

// suggestCmd fires the one-shot advisory evaluation after a worker landed
// on a process location. Fire-and-forget: the ledger mutation it follows
// is never rolled back.
func (a *App) suggestCmd(locationID, label string, workers []roster.Worker) tea.Cmd {
	return func() tea.Msg {
		suggestion, err := a.api.Suggest(a.ctx, locationID, label, workers)
		return suggestMsg{label: label, suggestion: suggestion, err: err}
	}
}

func (a *App) syncCmd(workers []roster.Worker) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{err: a.api.SyncAssignments(a.ctx, workers)}
	}
}

func (a *App) runStepCmd() tea.Cmd {
	return func() tea.Msg {
		done, err := a.orch.RunNext(a.ctx)
		return simStepMsg{done: done, err: err}
	}
}

func (a *App) analyzeCmd() tea.Cmd {
	return func() tea.Msg {
		a.orch.Analyze()
		return simAnalyzedMsg{}
	}
}

func (a *App) optimizeCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := a.api.StartOptimization(a.ctx)
		return optimizeMsg{status: status, err: err}
	}
}

func (a *App) openTrainingFeed() tea.Cmd {
	return func() tea.Msg {
		frames, err := client.WatchTraining(a.ctx, a.cfg.Settings.TrainingURL)
		return trainingOpenMsg{frames: frames, err: err}
	}
}

func (a *App) waitTrainingFrame(frames <-chan client.TrainingFrame) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-frames
		return trainingFrameMsg{frame: frame, ok: ok}
	}
}

func (a *App) waitChatEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.chat.Events()
		if !ok {
			return nil
		}
		return chatEventMsg(ev)
	}
}

func (a *App) scheduleScrollFrame() tea.Cmd {
	return tea.Tick(scrollFrameInterval, func(t time.Time) tea.Msg {
		return scrollFrameMsg(t)
	})
}

func (a *App) scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}
