// internal/tui/app.go
//
// The main twinboard TUI. It uses bubbletea's Elm-style loop:
//
// 1. Model: the App struct below holds all client-resident state
// 2. Update: messages (keys, mouse, command results) produce a new model
// 3. View: the board, modal, and chat panel render from snapshots
//
// The engine packages (ledger, simulate, chat, autoscroll) own the
// semantics; this file only translates input into engine calls and
// schedules the async commands.

package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbecker/twinboard/internal/autoscroll"
	"github.com/tbecker/twinboard/internal/chat"
	"github.com/tbecker/twinboard/internal/client"
	"github.com/tbecker/twinboard/internal/config"
	"github.com/tbecker/twinboard/internal/ledger"
	"github.com/tbecker/twinboard/internal/logbook"
	"github.com/tbecker/twinboard/internal/notify"
	"github.com/tbecker/twinboard/internal/roster"
	"github.com/tbecker/twinboard/internal/simulate"
)

// Auto-scroll frames run at display rate while a drag is active; toast
// expiry only needs a coarse tick.
const (
	scrollFrameInterval = 16 * time.Millisecond
	toastTickInterval   = time.Second
)

const (
	regionAssignments = "assignments"
	regionPool        = "pool"
)

type focusArea int

const (
	focusBoard focusArea = iota
	focusChat
)

// Evaluator is the remote calls the board needs; *client.Client satisfies
// it, tests substitute stubs.
type Evaluator interface {
	simulate.Evaluator
	Topology(ctx context.Context) ([]client.ProcessLocation, error)
	Suggest(ctx context.Context, locationID, label string, workers []roster.Worker) (client.Suggestion, error)
	SyncAssignments(ctx context.Context, workers []roster.Worker) error
	StartOptimization(ctx context.Context) (string, error)
}

// dragState is an in-flight mouse gesture.
type dragState struct {
	workerID  string
	from      string
	fromIndex int
	x, y      int
}

// grabState is the keyboard equivalent of a drag: a worker picked up and
// waiting for a drop position.
type grabState struct {
	workerID  string
	from      string
	fromIndex int
}

// cursor addresses one row of the board for keyboard navigation.
type cursor struct {
	region string // regionAssignments or regionPool
	row    int
}

type trainingState struct {
	frame  client.TrainingFrame
	frames <-chan client.TrainingFrame
	active bool
}

// Messages produced by commands.
type (
	topologyMsg struct {
		locations []client.ProcessLocation
		err       error
	}
	suggestMsg struct {
		label      string
		suggestion client.Suggestion
		err        error
	}
	syncDoneMsg struct{ err error }
	simStepMsg  struct {
		done bool
		err  error
	}
	simAnalyzedMsg   struct{}
	chatEventMsg     chat.Event
	scrollFrameMsg   time.Time
	toastTickMsg     time.Time
	optimizeMsg      struct {
		status string
		err    error
	}
	trainingOpenMsg struct {
		frames <-chan client.TrainingFrame
		err    error
	}
	trainingFrameMsg struct {
		frame client.TrainingFrame
		ok    bool
	}
)

// AppOption customizes App construction for tests.
type AppOption func(*App)

// WithEvaluator substitutes the remote client.
func WithEvaluator(ev Evaluator) AppOption {
	return func(a *App) { a.api = ev }
}

// WithChatTransport substitutes the chat transport.
func WithChatTransport(t *chat.Transport) AppOption {
	return func(a *App) { a.chat = t }
}

// App is the root model.
type App struct {
	cfg  *config.Config
	log  *logbook.Logbook
	api  Evaluator
	feed *notify.Feed
	orch *simulate.Orchestrator
	chat *chat.Transport

	workers   []roster.Worker
	ledger    ledger.Ledger
	locations []client.ProcessLocation
	labels    map[string]string
	topoErr   error
	loaded    bool

	scroll   *autoscroll.Controller
	drag     *dragState
	grabbed  *grabState
	sel      cursor
	focus    focusArea
	training trainingState

	assignVP  viewport.Model
	poolVP    viewport.Model
	chatVP    viewport.Model
	chatInput textinput.Model
	spin      spinner.Model
	prog      progress.Model

	// Row maps rebuilt on every board render; hit testing and the cursor
	// read them.
	assignRows []rowRef
	poolRows   []rowRef
	assignRect rect
	poolRect   rect

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp assembles the application model.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil, err
	}

	workers := roster.Defaults()
	if path := cfg.RosterPath(); path != "" {
		loaded, err := roster.Load(path)
		if err != nil {
			return nil, fmt.Errorf("roster %s: %w", path, err)
		}
		workers = loaded
	}

	feed := notify.NewFeed(8)
	api := client.New(cfg.Settings.ServerURL)
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		cfg:     cfg,
		log:     book,
		api:     api,
		feed:    feed,
		workers: workers,
		labels:  map[string]string{},
		scroll:  autoscroll.New(cfg.Settings.Scroll.EdgeRows, cfg.Settings.Scroll.SpeedRows),
		sel:     cursor{region: regionPool},
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	app.orch = simulate.New(app.api, feed,
		simulate.WithStepDwell(cfg.StepDwell()),
		simulate.WithAnalyzeDwell(cfg.AnalyzeDwell()),
	)
	if app.chat == nil {
		app.chat = chat.New(cfg.Settings.ChatURL, feed,
			chat.WithReconnectDelay(cfg.ReconnectDelay()),
		)
	}

	app.chatInput = textinput.New()
	app.chatInput.Placeholder = "Ask about the process…"
	app.chatInput.CharLimit = 280
	app.spin = spinner.New(spinner.WithSpinner(spinner.Dot))
	app.prog = progress.New(progress.WithDefaultGradient())
	app.assignVP = viewport.New(0, 0)
	app.poolVP = viewport.New(0, 0)
	app.chatVP = viewport.New(0, 0)

	book.Info("Session opened · endpoint %s", cfg.Settings.ServerURL)
	return app, nil
}

// Init starts the topology fetch, the chat transport, and the recurring
// ticks.
func (a *App) Init() tea.Cmd {
	a.chat.Start(a.ctx)
	return tea.Batch(
		a.fetchTopology(),
		a.waitChatEvent(),
		a.spin.Tick,
		a.scheduleToastTick(),
	)
}

// Update routes messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.recalcLayout()
		return a, nil

	case topologyMsg:
		return a.handleTopology(msg)

	case suggestMsg:
		return a.handleSuggestion(msg)

	case syncDoneMsg:
		if msg.err != nil {
			a.log.Warn("Assignment sync failed: %v", msg.err)
		}
		return a, nil

	case simStepMsg:
		return a.handleSimStep(msg)

	case simAnalyzedMsg:
		snap := a.orch.Snapshot()
		if agg := snap.Aggregate; agg != nil {
			a.log.Info("What-if complete · %d locations · cycle -%.1f%% · opex +$%.1fk",
				len(snap.Results), agg.CycleReductionPct, agg.OpexIncrease)
		}
		return a, nil

	case chatEventMsg:
		return a.handleChatEvent(chat.Event(msg))

	case scrollFrameMsg:
		return a.handleScrollFrame()

	case toastTickMsg:
		a.feed.Active(time.Now()) // prune
		return a, a.scheduleToastTick()

	case optimizeMsg:
		return a.handleOptimize(msg)

	case trainingOpenMsg:
		if msg.err != nil {
			a.feed.Notify("Training feed unavailable.", notify.LevelWarn, 0)
			return a, nil
		}
		a.training.active = true
		a.training.frames = msg.frames
		return a, a.waitTrainingFrame(msg.frames)

	case trainingFrameMsg:
		return a.handleTrainingFrame(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleTopology(msg topologyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.topoErr = msg.err
		a.feed.Notify("Could not reach the process service. Press r to retry.", notify.LevelError, 6*time.Second)
		a.log.Error("Topology fetch failed: %v", msg.err)
		return a, nil
	}
	a.topoErr = nil
	a.loaded = true
	a.locations = msg.locations
	ids := make([]string, 0, len(msg.locations))
	for _, loc := range msg.locations {
		ids = append(ids, loc.ID)
		a.labels[loc.ID] = loc.Label
	}
	a.ledger = ledger.New(ids, a.workers)
	a.log.Info("Topology loaded · %d locations · %d workers in pool", len(ids), len(a.workers))
	a.refreshBoard()
	return a, nil
}

func (a *App) handleSuggestion(msg suggestMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The ledger mutation stands; the advisory call has no rollback.
		a.feed.Notify("Suggestion unavailable for "+msg.label+".", notify.LevelWarn, 0)
		a.log.Warn("Suggestion fetch failed for %s: %v", msg.label, msg.err)
		return a, nil
	}
	a.feed.Notify(msg.suggestion.Advice, notify.LevelInfo, 7*time.Second)
	a.log.Info("Suggestion · %s · impact %.1f", msg.label, msg.suggestion.Result.ImpactScore)
	return a, nil
}

func (a *App) handleSimStep(msg simStepMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.log.Error("What-if aborted: %v", msg.err)
		return a, nil // orchestrator already reset and notified
	}
	if msg.done {
		return a, a.analyzeCmd()
	}
	return a, a.runStepCmd()
}

func (a *App) handleChatEvent(ev chat.Event) (tea.Model, tea.Cmd) {
	if ev.Kind == chat.EventStateChanged {
		a.log.Info("Chat transport · %s", ev.State)
	}
	a.refreshChat()
	return a, a.waitChatEvent()
}

func (a *App) handleScrollFrame() (tea.Model, tea.Cmd) {
	if a.drag == nil || !a.scroll.Active() {
		return a, nil // drag ended; loop stops here
	}
	for _, d := range a.scroll.Tick() {
		vp := &a.assignVP
		if d.Region == regionPool {
			vp = &a.poolVP
		}
		if d.Lines < 0 {
			vp.LineUp(-d.Lines)
		} else {
			vp.LineDown(d.Lines)
		}
	}
	return a, a.scheduleScrollFrame()
}

func (a *App) handleOptimize(msg optimizeMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.feed.Notify("Could not start optimization training.", notify.LevelError, 0)
		a.log.Error("Optimize trigger failed: %v", msg.err)
		return a, nil
	}
	if msg.status == "already_training" {
		a.feed.Notify("Optimization training is already running.", notify.LevelInfo, 0)
		return a, nil
	}
	a.feed.Notify("Optimization training started.", notify.LevelSuccess, 0)
	a.log.Info("Optimization training started")
	return a, a.openTrainingFeed()
}

func (a *App) handleTrainingFrame(msg trainingFrameMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		a.training.active = false
		a.training.frames = nil
		return a, nil
	}
	a.training.frame = msg.frame
	if msg.frame.Done() {
		a.training.active = false
		a.training.frames = nil
		a.feed.Notify("Optimization training complete.", notify.LevelSuccess, 0)
		a.log.Info("Training complete · reward %.1f", msg.frame.Reward)
		return a, nil
	}
	return a, a.waitTrainingFrame(a.training.frames)
}

// Close releases background resources; the cmd layer calls it after the
// program exits.
func (a *App) Close() {
	a.chat.Close()
	a.cancel()
	a.log.Info("Session closed")
}
