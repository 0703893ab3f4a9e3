// internal/tui/board.go
//
// Board geometry and content. The board is rebuilt into viewport content
// whenever the ledger, cursor, or layout changes, and each visible line
// carries a rowRef so mouse hit testing and the keyboard cursor address
// the same rows the user sees.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/tbecker/twinboard/internal/chat"
	"github.com/tbecker/twinboard/internal/ledger"
	"github.com/tbecker/twinboard/internal/roster"
)

type rowKind int

const (
	rowHeader rowKind = iota // location title line, drop inserts at front
	rowWorker                // a worker chip, drop inserts at its index
	rowTail                  // trailing blank, drop appends
)

// rowRef ties one content line to a ledger position.
type rowRef struct {
	loc   string
	index int
	kind  rowKind
}

// rect is a screen region in cell coordinates.
type rect struct {
	x0, y0 int
	w, h   int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x0 && x < r.x0+r.w && y >= r.y0 && y < r.y0+r.h
}

// Fixed rows above and below the board: header, column titles, log panel,
// toast strip, help line.
const (
	headerRows = 2
	titleRows  = 1
	logRows    = 4
	footerRows = 2
	poolWidth  = 28
	colGap     = 2
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	panelTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	locHeadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	bottleneckTag = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	workerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	grabbedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Italic(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	userMsgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	botMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// recalcLayout sizes the three columns and republishes the scroll regions.
func (a *App) recalcLayout() {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	bodyH := a.height - headerRows - titleRows - logRows - footerRows
	if bodyH < 3 {
		bodyH = 3
	}
	chatW := a.width / 3
	if chatW < 30 {
		chatW = 30
	}
	if chatW > 44 {
		chatW = 44
	}
	assignW := a.width - poolWidth - chatW - 2*colGap
	if assignW < 20 {
		assignW = 20
	}

	top := headerRows + titleRows
	a.poolRect = rect{x0: 0, y0: top, w: poolWidth, h: bodyH}
	a.assignRect = rect{x0: poolWidth + colGap, y0: top, w: assignW, h: bodyH}

	a.poolVP.Width = poolWidth
	a.poolVP.Height = bodyH
	a.assignVP.Width = assignW
	a.assignVP.Height = bodyH
	a.chatVP.Width = chatW
	a.chatVP.Height = bodyH - 2 // input line and state line live below
	a.chatInput.Width = chatW - 4

	a.scroll.SetRegion(regionPool, a.poolRect.y0, a.poolRect.y0+bodyH-1)
	a.scroll.SetRegion(regionAssignments, a.assignRect.y0, a.assignRect.y0+bodyH-1)

	a.refreshBoard()
	a.refreshChat()
}

// refreshBoard rebuilds both board viewports and their row maps.
func (a *App) refreshBoard() {
	if !a.loaded {
		return
	}
	a.poolRows, a.poolVP = a.renderPool()
	a.assignRows, a.assignVP = a.renderAssignments()
	a.keepCursorVisible()
}

func (a *App) renderPool() ([]rowRef, viewport.Model) {
	var lines []string
	var rows []rowRef
	pool := a.ledger.Pool()
	for i, w := range pool {
		lines = append(lines, a.workerLine(regionPool, ledger.PoolID, i, w))
		rows = append(rows, rowRef{loc: ledger.PoolID, index: i, kind: rowWorker})
	}
	if len(pool) == 0 {
		lines = append(lines, dimStyle.Render("  everyone is assigned"))
		rows = append(rows, rowRef{loc: ledger.PoolID, kind: rowTail})
	}
	lines = append(lines, "")
	rows = append(rows, rowRef{loc: ledger.PoolID, index: len(pool), kind: rowTail})

	vp := a.poolVP
	vp.SetContent(strings.Join(lines, "\n"))
	return rows, vp
}

func (a *App) renderAssignments() ([]rowRef, viewport.Model) {
	var lines []string
	var rows []rowRef
	for _, loc := range a.locations {
		head := locHeadStyle.Render("▸ " + loc.Label)
		head += dimStyle.Render(fmt.Sprintf("  %s", formatDays(loc.AvgDurationDays)))
		if loc.IsBottleneck {
			head += " " + bottleneckTag.Render("⚠ bottleneck")
		}
		lines = append(lines, head)
		rows = append(rows, rowRef{loc: loc.ID, kind: rowHeader})

		seq := a.ledger.Workers(loc.ID)
		for i, w := range seq {
			lines = append(lines, a.workerLine(regionAssignments, loc.ID, i, w))
			rows = append(rows, rowRef{loc: loc.ID, index: i, kind: rowWorker})
		}
		if len(seq) == 0 {
			lines = append(lines, dimStyle.Render("    (drop a worker here)"))
			rows = append(rows, rowRef{loc: loc.ID, kind: rowTail})
		}
		lines = append(lines, "")
		rows = append(rows, rowRef{loc: loc.ID, index: len(seq), kind: rowTail})
	}

	vp := a.assignVP
	vp.SetContent(strings.Join(lines, "\n"))
	return rows, vp
}

func (a *App) workerLine(region, loc string, index int, w roster.Worker) string {
	text := fmt.Sprintf("  %s · %s · %d%%", w.Name, w.Role, w.Efficiency)
	switch {
	case a.grabbed != nil && a.grabbed.workerID == w.ID:
		return grabbedStyle.Render(text + "  (grabbed)")
	case a.drag != nil && a.drag.workerID == w.ID:
		return grabbedStyle.Render(text)
	case a.focus == focusBoard && a.sel.region == region && a.rowAt(region, loc, index):
		return selectedStyle.Render(text)
	}
	return workerStyle.Render(text)
}

// rowAt reports whether the cursor currently sits on the given worker row.
func (a *App) rowAt(region, loc string, index int) bool {
	rows := a.poolRows
	if region == regionAssignments {
		rows = a.assignRows
	}
	if a.sel.row < 0 || a.sel.row >= len(rows) {
		return false
	}
	ref := rows[a.sel.row]
	return ref.kind == rowWorker && ref.loc == loc && ref.index == index
}

// refreshChat rebuilds the chat viewport and pins it to the newest message.
func (a *App) refreshChat() {
	if a.chat == nil {
		return
	}
	width := a.chatVP.Width
	if width < 10 {
		width = 40
	}
	var b strings.Builder
	for _, m := range a.chat.Messages() {
		style := botMsgStyle
		prefix := "twin"
		if m.Sender == chat.SenderUser {
			style = userMsgStyle
			prefix = "you"
		}
		b.WriteString(dimStyle.Render(prefix+" · "+m.At.Format("15:04")) + "\n")
		b.WriteString(style.Render(wrap(m.Text, width-2)) + "\n\n")
	}
	a.chatVP.SetContent(b.String())
	a.chatVP.GotoBottom()
}

// hitTest maps a screen cell to the board row beneath it.
func (a *App) hitTest(x, y int) (rowRef, bool) {
	switch {
	case a.assignRect.contains(x, y):
		line := y - a.assignRect.y0 + a.assignVP.YOffset
		if line >= 0 && line < len(a.assignRows) {
			return a.assignRows[line], true
		}
		// Below the last row still means "append to the final location".
		if n := len(a.assignRows); n > 0 {
			return a.assignRows[n-1], true
		}
	case a.poolRect.contains(x, y):
		line := y - a.poolRect.y0 + a.poolVP.YOffset
		if line >= 0 && line < len(a.poolRows) {
			return a.poolRows[line], true
		}
		if n := len(a.poolRows); n > 0 {
			return a.poolRows[n-1], true
		}
	}
	return rowRef{}, false
}

func (a *App) selectedRow() (rowRef, bool) {
	rows := a.poolRows
	if a.sel.region == regionAssignments {
		rows = a.assignRows
	}
	if a.sel.row < 0 || a.sel.row >= len(rows) {
		return rowRef{}, false
	}
	return rows[a.sel.row], true
}

func (a *App) moveCursor(delta int) {
	rows := a.poolRows
	if a.sel.region == regionAssignments {
		rows = a.assignRows
	}
	if len(rows) == 0 {
		return
	}
	a.sel.row += delta
	if a.sel.row < 0 {
		a.sel.row = 0
	}
	if a.sel.row >= len(rows) {
		a.sel.row = len(rows) - 1
	}
	a.refreshBoard()
}

func (a *App) switchRegion(region string) {
	if a.sel.region == region {
		return
	}
	a.sel.region = region
	a.sel.row = 0
	a.refreshBoard()
}

func (a *App) keepCursorVisible() {
	vp := &a.poolVP
	if a.sel.region == regionAssignments {
		vp = &a.assignVP
	}
	if vp.Height <= 0 {
		return
	}
	if a.sel.row < vp.YOffset {
		vp.SetYOffset(a.sel.row)
	} else if a.sel.row >= vp.YOffset+vp.Height {
		vp.SetYOffset(a.sel.row - vp.Height + 1)
	}
}

func scrollViewport(vp *viewport.Model, lines int) {
	if lines < 0 {
		vp.LineUp(-lines)
	} else {
		vp.LineDown(lines)
	}
}

func formatDays(d float64) string {
	return fmt.Sprintf("%.1fd", d)
}

// wrap is a plain word wrapper for chat text.
func wrap(text string, width int) string {
	if width < 8 {
		width = 8
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var b strings.Builder
	line := 0
	for i, w := range words {
		if i > 0 {
			if line+1+len(w) > width {
				b.WriteString("\n")
				line = 0
			} else {
				b.WriteString(" ")
				line++
			}
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}
