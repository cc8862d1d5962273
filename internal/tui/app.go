// Package tui is the terminal version of the game. It drives the same
// phase machine and stage controllers as the daemon, one round at a time.
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/toastmaster/toastmaster/pkg/critique"
	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

// Config wires the game to its collaborators.
type Config struct {
	Stages       stage.Config
	Assembler    *game.Assembler
	Suggester    stage.Suggester
	ToppingStage bool
}

// toastTickMsg redraws the toaster while it runs.
type toastTickMsg struct{ toaster *stage.Toaster }

// toastDoneMsg carries the toast that popped on its own.
type toastDoneMsg struct {
	toaster *stage.Toaster
	result  stage.Result
}

type suggestionsMsg struct {
	generation uint64
	preference string
	names      []string
}

type critiqueMsg struct {
	verdict scoring.Verdict
	ok      bool
}

// Model is the bubbletea model for one play session.
type Model struct {
	ctx      context.Context
	cfg      Config
	machine  *game.Machine
	cutter   *stage.Cutter
	toaster  *stage.Toaster
	grid     *stage.ButterGrid
	topping  *stage.ToppingStation
	input    textinput.Model
	row, col int
	thinking bool
	verdict  *scoring.Verdict
	status   string
	width    int
	quitting bool
}

// New returns a model at START.
func New(ctx context.Context, cfg Config) *Model {
	if cfg.Stages == (stage.Config{}) {
		cfg.Stages = stage.DefaultConfig()
	}
	if cfg.Assembler == nil {
		cfg.Assembler = game.NewAssembler(nil, nil)
	}
	if cfg.Suggester == nil {
		// Log output would tear the screen.
		cfg.Suggester = critique.NewGuard(nil, critique.GuardConfig{Logger: log.New(io.Discard, "", 0)})
	}

	in := textinput.New()
	in.Placeholder = "sweet, savory, spicy..."
	in.CharLimit = 40

	m := &Model{
		ctx:   ctx,
		cfg:   cfg,
		input: in,
		machine: game.NewMachine(
			game.WithAssembler(cfg.Assembler),
			game.WithToppingStageIf(cfg.ToppingStage),
		),
	}
	m.resetStages()
	return m
}

// Run plays until the player quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	m := New(ctx, cfg)
	defer m.toaster.Close()
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) resetStages() {
	if m.toaster != nil {
		m.toaster.Close()
	}
	m.cutter = stage.NewCutter(m.cfg.Stages)
	m.toaster = stage.NewToaster(m.cfg.Stages.ToastTick)
	m.grid = stage.NewButterGrid(m.cfg.Stages.GridSize)
	m.topping = stage.NewToppingStation(m.cfg.Suggester)
	m.row, m.col = 0, 0
	m.verdict = nil
	m.thinking = false
	m.input.Reset()
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case toastTickMsg:
		if msg.toaster != m.toaster || !m.toaster.Active() {
			return m, nil
		}
		return m, m.tick()

	case toastDoneMsg:
		if msg.toaster != m.toaster || m.machine.Phase() != game.PhaseToast {
			return m, nil
		}
		return m, m.complete(msg.result)

	case suggestionsMsg:
		if msg.generation != m.machine.Generation() || m.machine.Phase() != game.PhaseTopping {
			return m, nil
		}
		m.thinking = false
		m.topping = stage.RestoreToppingStation(m.cfg.Suggester, msg.preference, msg.names)
		m.status = ""
		return m, nil

	case critiqueMsg:
		m.thinking = false
		if msg.ok {
			m.verdict = &msg.verdict
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			m.toaster.Close()
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	}

	if m.machine.Phase() == game.PhaseTopping {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.machine.Phase() {
	case game.PhaseStart:
		if key.Matches(msg, keys.Next, keys.Action) {
			m.report(m.machine.Begin())
		}

	case game.PhaseCut:
		switch {
		case key.Matches(msg, keys.Action):
			m.cutter.Cut()
		case key.Matches(msg, keys.Next):
			return m.complete(m.cutter.Finish())
		}

	case game.PhaseToast:
		if !key.Matches(msg, keys.Action, keys.Next) {
			return nil
		}
		if m.toaster.Active() {
			res, err := m.toaster.Stop()
			if err != nil {
				m.report(err)
				return nil
			}
			return m.complete(res)
		}
		if err := m.toaster.Start(m.ctx); err != nil {
			m.report(err)
			return nil
		}
		return tea.Batch(m.tick(), waitForToast(m.toaster))

	case game.PhaseButter:
		size := m.grid.Size()
		switch {
		case key.Matches(msg, keys.Up):
			m.row = (m.row + size - 1) % size
		case key.Matches(msg, keys.Down):
			m.row = (m.row + 1) % size
		case key.Matches(msg, keys.Left):
			m.col = (m.col + size - 1) % size
		case key.Matches(msg, keys.Right):
			m.col = (m.col + 1) % size
		case key.Matches(msg, keys.Action):
			_, err := m.grid.Spread(m.row, m.col)
			m.report(err)
		case key.Matches(msg, keys.Next):
			return m.complete(m.grid.Finish())
		}

	case game.PhaseTopping:
		return m.handleToppingKey(msg)

	case game.PhaseResult:
		if key.Matches(msg, keys.Restart) {
			if err := m.machine.Restart(); err != nil {
				m.report(err)
				return nil
			}
			m.resetStages()
		}
	}
	return nil
}

func (m *Model) handleToppingKey(msg tea.KeyMsg) tea.Cmd {
	if m.thinking {
		return nil
	}
	suggestions := m.topping.Suggestions()

	if len(suggestions) > 0 && key.Matches(msg, keys.Pick) {
		i := int(msg.String()[0] - '1')
		res, err := m.topping.Choose(i)
		if err != nil {
			m.report(err)
			return nil
		}
		return m.complete(res)
	}
	if len(suggestions) == 0 && m.input.Value() == "" && key.Matches(msg, keys.Pick) {
		i := int(msg.String()[0] - '1')
		return m.suggest(stage.QuickPicks[i])
	}

	if key.Matches(msg, keys.Next) {
		text := strings.TrimSpace(m.input.Value())
		if len(suggestions) > 0 && text != "" {
			// A typed name after suggestions is taken as a custom topping.
			res, err := m.topping.Custom(text)
			if err != nil {
				m.report(err)
				return nil
			}
			return m.complete(res)
		}
		return m.suggest(text)
	}

	if !m.input.Focused() {
		m.input.Focus()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// suggest asks the suggester off the UI goroutine.
func (m *Model) suggest(preference string) tea.Cmd {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		m.report(stage.ErrEmptyPreference)
		return nil
	}
	m.thinking = true
	m.status = "Asking the chef..."
	m.input.Reset()

	gen := m.machine.Generation()
	station := stage.NewToppingStation(m.cfg.Suggester)
	ctx := m.ctx
	return func() tea.Msg {
		names, _ := station.Suggest(ctx, preference)
		return suggestionsMsg{generation: gen, preference: preference, names: names}
	}
}

// complete hands a stage result to the machine and, at RESULT, starts
// the critique.
func (m *Model) complete(res stage.Result) tea.Cmd {
	if err := m.machine.Complete(res); err != nil {
		m.report(err)
		return nil
	}
	m.status = ""
	if m.machine.Phase() != game.PhaseResult {
		return nil
	}
	v, err := m.machine.Verdict()
	if err != nil {
		m.report(err)
		return nil
	}
	m.verdict = &v
	m.thinking = true

	ch := m.cfg.Assembler.Enrich(m.ctx, m.machine)
	return func() tea.Msg {
		v, ok := <-ch
		return critiqueMsg{verdict: v, ok: ok}
	}
}

func (m *Model) tick() tea.Cmd {
	t := m.toaster
	return tea.Tick(m.cfg.Stages.ToastTick, func(time.Time) tea.Msg {
		return toastTickMsg{toaster: t}
	})
}

func waitForToast(t *stage.Toaster) tea.Cmd {
	return func() tea.Msg {
		select {
		case res := <-t.Done():
			return toastDoneMsg{toaster: t, result: res}
		case <-t.Closed():
			return nil
		}
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = fmt.Sprintf("%v", err)
	}
}
