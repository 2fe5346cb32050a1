package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
	"github.com/abhinandh-s/lazy.tmux/internal/infrastructure/logging"
)

// ProgressSink renders a live table of actions with Bubble Tea. Failures,
// warnings and the summary are printed as plain lines once the view has
// finished, so the error stream looks the same as without --progress.
type ProgressSink struct {
	program  *tea.Program
	done     chan struct{}
	fallback *logging.ConsoleSink

	mu       sync.Mutex
	finished bool
	failures []plugindomain.Outcome
	warnings []string
	once     sync.Once
}

// NewProgressSink starts the progress view on out
func NewProgressSink(verb plugindomain.Verb, out, errOut io.Writer) *ProgressSink {
	program := tea.NewProgram(newProgressModel(verb),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	s := &ProgressSink{
		program:  program,
		done:     make(chan struct{}),
		fallback: logging.NewConsoleSink(out, errOut),
	}
	go func() {
		defer close(s.done)
		_, _ = program.Run()
	}()
	return s
}

// Emit forwards a transition to the view
func (s *ProgressSink) Emit(o plugindomain.Outcome) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		s.fallback.Emit(o)
		return
	}
	if o.Status == plugindomain.StatusFailed {
		s.failures = append(s.failures, o)
	}
	s.mu.Unlock()

	s.program.Send(outcomeMsg(o))
}

// Notice adds a line under the table
func (s *ProgressSink) Notice(format string, args ...any) {
	s.mu.Lock()
	finished := s.finished
	s.mu.Unlock()
	if finished {
		s.fallback.Notice(format, args...)
		return
	}
	s.program.Send(noticeMsg(fmt.Sprintf(format, args...)))
}

// Warn is held back until the view has finished
func (s *ProgressSink) Warn(format string, args ...any) {
	s.mu.Lock()
	if !s.finished {
		s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.fallback.Warn(format, args...)
}

// Summary stops the view and prints the held back lines and the tally
func (s *ProgressSink) Summary(c plugindomain.Counts) {
	s.program.Send(summaryMsg(c))
	s.finish()
	s.fallback.Summary(c)
}

// Close stops the view if Summary was never reached
func (s *ProgressSink) Close() {
	s.program.Quit()
	s.finish()
}

func (s *ProgressSink) finish() {
	s.once.Do(func() {
		<-s.done

		s.mu.Lock()
		s.finished = true
		failures, warnings := s.failures, s.warnings
		s.failures, s.warnings = nil, nil
		s.mu.Unlock()

		for _, o := range failures {
			s.fallback.Emit(o)
		}
		for _, w := range warnings {
			s.fallback.Warn("%s", w)
		}
	})
}

var _ pluginports.Sink = (*ProgressSink)(nil)

type outcomeMsg plugindomain.Outcome
type noticeMsg string
type summaryMsg plugindomain.Counts

// progressRow is one plugin in the table
type progressRow struct {
	slug    string
	action  plugindomain.ActionKind
	status  plugindomain.Status
	because string
}

// progressModel holds the state for the progress view
type progressModel struct {
	verb    plugindomain.Verb
	rows    []progressRow
	index   map[string]int
	notices []string
	width   int
}

func newProgressModel(verb plugindomain.Verb) progressModel {
	return progressModel{verb: verb, index: make(map[string]int)}
}

// Init implements the Bubble Tea init method
func (m progressModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case outcomeMsg:
		row := progressRow{
			slug:    msg.Slug,
			action:  msg.Action,
			status:  msg.Status,
			because: msg.Because,
		}
		if i, ok := m.index[msg.Slug]; ok {
			m.rows[i] = row
		} else {
			m.index[msg.Slug] = len(m.rows)
			m.rows = append(m.rows, row)
		}
		return m, nil

	case noticeMsg:
		m.notices = append(m.notices, string(msg))
		return m, nil

	case summaryMsg:
		return m, tea.Quit
	}

	return m, nil
}

var (
	progressTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	progressRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	progressOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	progressFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	progressDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// View implements the Bubble Tea view method
func (m progressModel) View() string {
	done := 0
	for _, r := range m.rows {
		if r.status.IsTerminal() {
			done++
		}
	}

	header := progressTitle.Render("lazy-tmux "+m.verb.String()) +
		progressDim.Render(fmt.Sprintf("  %d/%d done", done, len(m.rows)))

	lines := []string{header}
	for _, r := range m.rows {
		lines = append(lines, m.renderRow(r))
	}
	lines = append(lines, m.notices...)

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m progressModel) renderRow(r progressRow) string {
	var mark, detail string
	switch r.status {
	case plugindomain.StatusRunning:
		mark, detail = progressRunning.Render("…"), r.action.String()
	case plugindomain.StatusSucceeded:
		mark, detail = progressOK.Render("✓"), logging.Verbed(r.action)
	case plugindomain.StatusFailed:
		mark, detail = progressFail.Render("✗"), "failed"
	case plugindomain.StatusSkipped:
		mark, detail = progressDim.Render("-"), "skipped"
		if r.because != "" {
			detail += " (" + r.because + ")"
		}
	default:
		mark, detail = " ", r.status.String()
	}

	text := fmt.Sprintf("%-40s %s", r.slug, detail)
	if m.width > 2 {
		text = truncateString(text, m.width-2)
	}
	return mark + " " + text
}

// truncateString truncates s to maxLen runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return strings.TrimRight(string(runes[:maxLen-1]), " ") + "…"
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
