// Package tui is the interactive front end of the ZX reduce-and-extract
// pipeline: a parameter form on the left and the stages of the latest run
// on the right.
package tui

import (
	"context"
	"math/rand"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qdemos/internal/demos"
	"qdemos/internal/sim"
)

// Options configure a new Model.
type Options struct {
	Params demos.ZXParams
	// Seed drives the seeds of successive runs; 0 means time based.
	Seed   int64
	Logger *zap.Logger
}

// resultMsg carries a finished pipeline run back to Update.
type resultMsg struct {
	gen    int
	report *demos.ZXReport
	err    error
}

// Model represents the TUI application state.
type Model struct {
	form     form
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	logger   *zap.Logger
	rng      *rand.Rand

	width   int
	height  int
	xOffset int // horizontal scroll of the result panel

	// generation counts submissions; only the result of the latest one is
	// shown.
	generation int
	computing  bool
	report     *demos.ZXReport
	err        error
}

// New builds the model with the form set to opts.Params.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = selectedStyle

	v := viewport.New(0, 0)
	v.MouseWheelEnabled = true

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		form:     newForm(opts.Params),
		spinner:  s,
		viewport: v,
		help:     help.New(),
		logger:   logger,
		rng:      sim.NewRand(opts.Seed),
	}
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

// compute runs the whole pipeline for one submission.
func compute(gen int, p demos.ZXParams, seed int64) tea.Cmd {
	return func() tea.Msg {
		r, err := demos.ReduceAndExtract(p, sim.NewRand(seed))
		return resultMsg{gen: gen, report: r, err: err}
	}
}

func (m *Model) submit() tea.Cmd {
	m.generation++
	m.computing = true
	p := m.form.params()
	m.logger.Debug("submitting zx pipeline",
		zap.Int("generation", m.generation),
		zap.Int("qubits", p.Qubits),
		zap.Int("depth", p.Depth),
		zap.Float64("p_had", p.PHad),
		zap.Float64("p_t", p.PT),
	)
	return tea.Batch(m.spinner.Tick, compute(m.generation, p, m.rng.Int63()))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		m.resize()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
		case key.Matches(msg, keys.Submit):
			cmds = append(cmds, m.submit())
		case key.Matches(msg, keys.Up):
			m.form.prev()
		case key.Matches(msg, keys.Down):
			m.form.next()
		case key.Matches(msg, keys.Left):
			m.form.adjust(false)
		case key.Matches(msg, keys.Right):
			m.form.adjust(true)
		case msg.String() == "[":
			m.xOffset = max(0, m.xOffset-panStep)
			m.refresh()
		case msg.String() == "]":
			m.xOffset += panStep
			m.refresh()
		case key.Matches(msg, keys.PageUp, keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		if m.computing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case resultMsg:
		if msg.gen != m.generation {
			m.logger.Debug("dropping stale result", zap.Int("generation", msg.gen))
			break
		}
		m.computing = false
		m.report, m.err = msg.report, msg.err
		if msg.err != nil {
			m.logger.Warn("zx pipeline failed", zap.Error(msg.err))
		} else {
			m.logger.Info("zx pipeline finished",
				zap.Int("generation", msg.gen),
				zap.Int("gates_before", len(msg.report.Original.Gates)),
				zap.Int("gates_after", len(msg.report.Extracted.Gates)),
			)
		}
		m.xOffset = 0
		m.refresh()
		m.viewport.GotoTop()
	}

	return m, tea.Batch(cmds...)
}

// resize fits the viewport into the result panel.
func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	bodyH := m.bodyHeight()
	m.viewport.Width = max(m.resultWidth()-2, 10)
	m.viewport.Height = max(bodyH-2, 1)
	m.refresh()
}

// refresh re-renders the report into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(cutColumns(renderReport(m.report), m.xOffset, m.viewport.Width))
}

func (m Model) resultWidth() int {
	return max(m.width-formW-4, 20)
}

func (m Model) bodyHeight() int {
	return max(m.height-m.helpHeight()-2, minPanelH)
}

func (m Model) helpHeight() int {
	return lipgloss.Height(m.help.View(keys)) + 2
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	bodyH := m.bodyHeight()
	formPanel := formStyle.Width(formW).Height(bodyH).
		Render(m.form.view(m.computing, m.spinner.View()))
	resultPanel := m.renderResultPanel(m.resultWidth(), bodyH)
	helpPanel := helpStyle.Width(m.width - 2).Render(m.help.View(keys))

	body := lipgloss.JoinHorizontal(lipgloss.Top, formPanel, resultPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, body, helpPanel)

	if m.err != nil {
		frame = overlayAt(frame, renderError(m.err, m.width/2), 4, 2)
	}
	return frame
}
