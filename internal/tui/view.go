// internal/tui/view.go

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tbecker/twinboard/internal/chat"
	"github.com/tbecker/twinboard/internal/notify"
	"github.com/tbecker/twinboard/internal/simulate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	badgeOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badgeWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badgeErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("57")).Padding(1, 3)
	toastStyles = map[notify.Level]lipgloss.Style{
		notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		notify.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
)

// View renders the full screen: header, three columns, log tail, toast
// strip, help line. The what-if modal replaces the body while a run is
// visible.
func (a *App) View() string {
	if a.width == 0 {
		return "starting…"
	}

	var b strings.Builder
	b.WriteString(a.headerView())
	b.WriteString("\n\n")

	if a.orch.Phase() != simulate.PhaseIdle {
		b.WriteString(a.modalView())
	} else {
		b.WriteString(a.boardView())
	}

	b.WriteString("\n")
	b.WriteString(a.logView())
	b.WriteString("\n")
	b.WriteString(a.toastView())
	b.WriteString("\n")
	b.WriteString(a.helpView())
	return b.String()
}

func (a *App) headerView() string {
	title := headerStyle.Render(" twinboard · workforce what-if cockpit ")

	var badge string
	switch a.chat.State() {
	case chat.StateConnected:
		badge = badgeOK.Render("● twin link up")
	case chat.StateConnecting:
		badge = badgeWarn.Render("◌ twin link connecting")
	default:
		badge = badgeErr.Render("○ twin link down")
	}

	line := title + "  " + badge
	if a.training.active {
		f := a.training.frame
		line += "  " + badgeWarn.Render(fmt.Sprintf("⚙ training %d/%d · reward %.1f", f.Step, f.Total, f.Reward))
	}
	if a.topoErr != nil {
		line += "  " + badgeErr.Render("process service unreachable · press r")
	}
	return line
}

func (a *App) boardView() string {
	if !a.loaded {
		return dimStyle.Render("  loading process topology… " + a.spin.View())
	}

	pool := panelTitle.Render("WORKER POOL") + "\n" + a.poolVP.View()
	assign := panelTitle.Render("PROCESS LOCATIONS") + "\n" + a.assignVP.View()
	chatCol := panelTitle.Render("PROCESS TWIN CHAT") + "\n" + a.chatPanelView()

	gap := strings.Repeat(" ", colGap)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(poolWidth).Render(pool),
		gap,
		lipgloss.NewStyle().Width(a.assignRect.w).Render(assign),
		gap,
		chatCol,
	)
}

func (a *App) chatPanelView() string {
	var b strings.Builder
	b.WriteString(a.chatVP.View())
	b.WriteString("\n")
	if a.chat.Pending() {
		b.WriteString(dimStyle.Render("twin is thinking… " + a.spin.View()))
	} else {
		b.WriteString("")
	}
	b.WriteString("\n")
	if a.focus == focusChat {
		b.WriteString(a.chatInput.View())
	} else {
		b.WriteString(dimStyle.Render("tab to chat"))
	}
	return b.String()
}

// modalView renders the phased run: spinner and progress while simulating,
// the per-location table and aggregate once complete.
func (a *App) modalView() string {
	snap := a.orch.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render(snap.Phase.FriendlyName()) + "\n\n")

	switch snap.Phase {
	case simulate.PhaseSimulating:
		pct := 0.0
		if snap.Progress.Total > 0 {
			pct = float64(snap.Progress.Current) / float64(snap.Progress.Total)
		}
		b.WriteString(fmt.Sprintf("%s step %d of %d · %s\n\n",
			a.spin.View(), snap.Progress.Current, snap.Progress.Total, snap.Progress.Label))
		b.WriteString(a.prog.ViewAs(pct))

	case simulate.PhaseAnalyzing:
		b.WriteString(a.spin.View() + " folding per-location results…\n\n")
		b.WriteString(a.prog.ViewAs(1.0))

	case simulate.PhaseComplete:
		for _, lr := range snap.Results {
			b.WriteString(fmt.Sprintf("%-22s  %5.1fd → %5.1fd   −%4.1f%%   impact %5.1f\n",
				lr.Label, lr.Result.CycleTimeBefore, lr.Result.CycleTimeAfter,
				lr.Result.CycleReductionPct, lr.Result.ImpactScore))
		}
		if agg := snap.Aggregate; agg != nil {
			b.WriteString("\n")
			b.WriteString(titleStyle.Render("OVERALL") + "\n")
			b.WriteString(fmt.Sprintf("cycle time   %.1fd → %.1fd (−%.1f%%)\n",
				agg.CycleTimeBefore, agg.CycleTimeAfter, agg.CycleReductionPct))
			b.WriteString(fmt.Sprintf("throughput   +%.1f%%\n", agg.ThroughputGainPct))
			b.WriteString(fmt.Sprintf("opex         +$%.1fk/mo\n", agg.OpexIncrease))
			if agg.IsBottleneck {
				b.WriteString(bottleneckTag.Render("⚠ a bottleneck remains in the flow") + "\n")
			} else {
				b.WriteString(badgeOK.Render("✓ no bottleneck remains") + "\n")
			}
			b.WriteString(fmt.Sprintf("impact score %.1f\n", agg.ImpactScore))
		}
		b.WriteString("\n" + helpStyle.Render("enter/esc to dismiss"))
	}

	body := modalStyle.Render(b.String())
	return lipgloss.Place(a.width, a.assignRect.h+titleRows, lipgloss.Center, lipgloss.Center, body)
}

func (a *App) logView() string {
	lines := a.log.Tail(logRows - 1)
	var b strings.Builder
	b.WriteString(panelTitle.Render("LOG") + "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render(line))
	}
	return b.String()
}

func (a *App) toastView() string {
	toasts := a.feed.Active(time.Now())
	if len(toasts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(toasts))
	for _, t := range toasts {
		parts = append(parts, toastStyles[t.Level].Render("▪ "+t.Message))
	}
	return strings.Join(parts, "   ")
}

func (a *App) helpView() string {
	if a.focus == focusChat {
		return helpStyle.Render("enter send · ctrl+r reset chat · esc back to board · ctrl+c quit")
	}
	return helpStyle.Render("↑↓ move · ←→ column · space grab/drop · p to pool · s what-if · o optimize · tab chat · q quit")
}
