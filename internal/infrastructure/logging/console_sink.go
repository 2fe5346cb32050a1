package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
	pluginports "github.com/abhinandh-s/lazy.tmux/internal/core/ports/plugin"
)

// MaxDiagnosticWidth caps the diagnostic printed after "owner/repo:"
const MaxDiagnosticWidth = 200

// ConsoleSink writes one status line per event. A single mutex covers both
// streams and every line is emitted with one Write call.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	ok      lipgloss.Style
	skip    lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	summary lipgloss.Style
}

// NewConsoleSink creates a sink writing status to out and failures to errOut.
// Colors are only used when the stream is a terminal.
func NewConsoleSink(out, errOut io.Writer) *ConsoleSink {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)

	return &ConsoleSink{
		out:     out,
		errOut:  errOut,
		ok:      outR.NewStyle().Foreground(lipgloss.Color("46")),
		skip:    outR.NewStyle().Foreground(lipgloss.Color("240")),
		fail:    errR.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warn:    errR.NewStyle().Foreground(lipgloss.Color("214")),
		summary: outR.NewStyle().Bold(true),
	}
}

// Emit reports a terminal transition; Running and Planned are not printed
func (s *ConsoleSink) Emit(o plugindomain.Outcome) {
	switch o.Status {
	case plugindomain.StatusSucceeded:
		s.writeLine(s.out, s.ok.Render(Verbed(o.Action)+":")+" "+o.Slug)
	case plugindomain.StatusSkipped:
		line := s.skip.Render("skipped:") + " " + o.Slug
		if o.Because != "" {
			line += " (" + o.Because + ")"
		}
		s.writeLine(s.out, line)
	case plugindomain.StatusFailed:
		s.writeLine(s.errOut, s.fail.Render(o.Slug+":")+" "+Diagnostic(o.Err))
	}
}

// Notice prints an informational line on the status stream
func (s *ConsoleSink) Notice(format string, args ...any) {
	s.writeLine(s.out, fmt.Sprintf(format, args...))
}

// Warn prints a warning line on the error stream
func (s *ConsoleSink) Warn(format string, args ...any) {
	s.writeLine(s.errOut, s.warn.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

// Summary prints the final tally. It goes to the error stream when
// something failed.
func (s *ConsoleSink) Summary(c plugindomain.Counts) {
	w := s.out
	if c.Failed > 0 {
		w = s.errOut
	}
	s.writeLine(w, s.summary.Render(c.String()))
}

func (s *ConsoleSink) writeLine(w io.Writer, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(w, line+"\n")
}

// Verbed names a successful action for the status line
func Verbed(a plugindomain.ActionKind) string {
	switch a {
	case plugindomain.ActionClone:
		return "installed"
	case plugindomain.ActionPull:
		return "updated"
	case plugindomain.ActionRecreate:
		return "recreated"
	case plugindomain.ActionRemove:
		return "removed"
	default:
		return "done"
	}
}

// Diagnostic flattens err to a single line of at most MaxDiagnosticWidth runes
func Diagnostic(err error) string {
	if err == nil {
		return "unknown error"
	}
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if utf8.RuneCountInString(msg) <= MaxDiagnosticWidth {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:MaxDiagnosticWidth-1]) + "…"
}

var _ pluginports.Sink = (*ConsoleSink)(nil)
