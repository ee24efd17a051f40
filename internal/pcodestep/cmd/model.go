package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"pcodestep/internal/pcodestep/styles"
	"pcodestep/internal/stepper"
)

type viewMode int

const (
	viewPcode viewMode = iota
	viewUniques
)

// completionMsg carries a finished background emulation back to Update.
type completionMsg struct {
	stepper.Completion
}

func runTaskCmd(task *stepper.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return func() tea.Msg {
		return completionMsg{task.Run()}
	}
}

type model struct {
	sess     *session
	threads  []string
	viewport viewport.Model
	uniques  list.Model
	spinner  spinner.Model
	mode     viewMode
	status   string
	width    int
	height   int

	// first is the task that loads the starting coordinates.
	first *stepper.Task
}

func newModel(sess *session, coords stepper.Coordinates) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	uniques := list.New([]list.Item{}, uniqueDelegate{}, 80, 24)
	uniques.SetShowStatusBar(false)
	uniques.SetFilteringEnabled(true)
	uniques.Title = "Uniques"
	uniques.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	uniques.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := model{
		sess:     sess,
		threads:  sess.trace.Threads(),
		viewport: vp,
		uniques:  uniques,
		spinner:  s,
		mode:     viewPcode,
		width:    80,
		height:   24,
	}
	m.first = sess.loader.Activate(coords)
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(runTaskCmd(m.first), m.spinner.Tick)
}

func (m model) loading() bool {
	return m.sess.loader.State() == stepper.StateLoading
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case completionMsg:
		state := m.sess.loader.Resolve(msg.Completion)
		if state == stepper.StateStale {
			m.sess.logger.Debug("stale completion", "coords", msg.Coordinates)
		}
		if msg.Err != nil && state != stepper.StateStale {
			m.status = msg.Err.Error()
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading() {
			m.refresh()
		}
		// Keep ticking so that later loads animate too.
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 1)
			m.uniques.SetWidth(msg.Width)
			m.uniques.SetHeight(msg.Height - 1)
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		// Let the list handle keys while filtering.
		if m.mode == viewUniques && m.uniques.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "u":
			if m.mode == viewPcode {
				m.mode = viewUniques
			} else {
				m.mode = viewPcode
			}
			return m, nil
		case "right", "l":
			return m, m.step(stepper.Coordinates.StepForward)
		case "left", "h":
			return m, m.step(stepper.Coordinates.StepBackward)
		case "t":
			return m, m.cycleThread()
		case "enter":
			if m.mode == viewUniques {
				m.cycleType(m.uniques.Index())
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewUniques:
		m.uniques, cmd = m.uniques.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// step moves the coordinates with move and activates the result.
func (m *model) step(move func(stepper.Coordinates) (stepper.Coordinates, error)) tea.Cmd {
	next, err := move(m.sess.loader.Current())
	if err != nil {
		m.status = err.Error()
		m.refresh()
		return nil
	}
	m.status = ""
	return m.activate(next)
}

func (m *model) activate(c stepper.Coordinates) tea.Cmd {
	task := m.sess.loader.Activate(c)
	m.refresh()
	return runTaskCmd(task)
}

// cycleThread selects the trace's next thread.
func (m *model) cycleThread() tea.Cmd {
	if len(m.threads) == 0 {
		return nil
	}
	c := m.sess.loader.Current()
	next := m.threads[0]
	for i, t := range m.threads {
		if t == c.Thread && i+1 < len(m.threads) {
			next = m.threads[i+1]
		}
	}
	c.Thread = next
	m.status = ""
	return m.activate(c)
}

// cycleType gives the i'th unique the next builtin type of its size, or
// clears it after the last.
func (m *model) cycleType(i int) {
	view := m.sess.loader.View()
	if i < 0 || i >= len(view.Uniques) {
		return
	}
	e := view.Uniques[i]
	if err := m.sess.loader.AssignType(i, nextType(e.Type, e.Varnode.Size)); err != nil {
		m.status = err.Error()
	} else {
		m.status = ""
	}
	m.refresh()
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewUniques:
		content = m.uniques.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewUniques:
		menu = " Enter: cycle type • U: p-code • Tab: cycle • Q: quit "
	default:
		menu = " ←/→: step • T: thread • U: uniques • Tab: cycle • Q: quit "
	}
	if m.status != "" {
		menu = " " + m.status + " •" + menu
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// refresh rebuilds the viewport content and the uniques list from the
// loader's view.
func (m *model) refresh() {
	view := m.sess.loader.View()
	c := m.sess.loader.Current()

	width := m.width
	if width == 0 {
		width = 80
	}
	header := styles.Header{
		Trace:  m.sess.trace.Name(),
		Time:   c.Time.String(),
		Thread: c.Thread,
		State:  view.State.String(),
	}

	var sb strings.Builder
	sb.WriteString(header.Render(width-2, m.sess.palette.NoColor))
	sb.WriteString("\n")
	sb.WriteString(instructionLine(m.sess, view))
	sb.WriteString("\n\n")
	if view.State == stepper.StateLoading {
		fmt.Fprintf(&sb, "%s Emulating...\n\n", m.spinner.View())
	}
	rows, err := m.sess.palette.Rows(view.Rows)
	if err != nil {
		rows = err.Error()
	}
	sb.WriteString(rows)
	if len(view.Uniques) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(uniquesTable(view.Uniques, m.sess.palette.NoColor))
	}
	m.viewport.SetContent(strings.TrimSuffix(sb.String(), "\n"))

	idx := m.uniques.Index()
	m.uniques.SetItems(uniqueItems(view.Uniques))
	if idx < len(view.Uniques) {
		m.uniques.Select(idx)
	}
}
