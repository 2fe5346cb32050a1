package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "github.com/abhinandh-s/lazy.tmux/internal/core/domain/plugin"
)

func update(t *testing.T, m progressModel, msg tea.Msg) (progressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(progressModel)
	require.True(t, ok)
	return pm, cmd
}

func TestProgressModel_TracksRows(t *testing.T) {
	m := newProgressModel(plugindomain.VerbInstall)

	m, _ = update(t, m, outcomeMsg{Slug: "a/one", Action: plugindomain.ActionClone, Status: plugindomain.StatusRunning})
	m, _ = update(t, m, outcomeMsg{Slug: "b/two", Action: plugindomain.ActionSkip, Status: plugindomain.StatusSkipped, Because: "already installed"})
	m, _ = update(t, m, outcomeMsg{Slug: "a/one", Action: plugindomain.ActionClone, Status: plugindomain.StatusSucceeded})
	m, _ = update(t, m, noticeMsg("hello"))

	require.Len(t, m.rows, 2, "a slug keeps its row")
	assert.Equal(t, plugindomain.StatusSucceeded, m.rows[0].status)

	view := m.View()
	assert.Contains(t, view, "lazy-tmux install")
	assert.Contains(t, view, "2/2 done")
	assert.Contains(t, view, "installed")
	assert.Contains(t, view, "skipped (already installed)")
	assert.Contains(t, view, "hello")
	assert.Less(t, strings.Index(view, "a/one"), strings.Index(view, "b/two"))
}

func TestProgressModel_RunningIsNotDone(t *testing.T) {
	m := newProgressModel(plugindomain.VerbUpdate)
	m, _ = update(t, m, outcomeMsg{Slug: "a/one", Action: plugindomain.ActionPull, Status: plugindomain.StatusRunning})

	assert.Contains(t, m.View(), "0/1 done")
	assert.Contains(t, m.View(), "pull")
}

func TestProgressModel_SummaryQuits(t *testing.T) {
	m := newProgressModel(plugindomain.VerbClean)

	_, cmd := update(t, m, summaryMsg{Succeeded: 1})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestProgressModel_TruncatesToWidth(t *testing.T) {
	m := newProgressModel(plugindomain.VerbInstall)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})
	m, _ = update(t, m, outcomeMsg{Slug: "an-owner-with-a-long-name/and-a-long-repo", Status: plugindomain.StatusFailed})

	row := m.renderRow(m.rows[0])
	assert.Contains(t, row, "…")
	assert.NotContains(t, row, "and-a-long-repo")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 10, "truncated…"},
		{"trailing  space", 10, "trailing…"},
		{"héllo wörld", 6, "héllo…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateString(tt.in, tt.max), tt.in)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}

func TestProgressSink_FlushesFailuresAfterView(t *testing.T) {
	var out, errOut bytes.Buffer
	sink := NewProgressSink(plugindomain.VerbInstall, &out, &errOut)

	sink.Emit(plugindomain.Outcome{Slug: "a/ok", Action: plugindomain.ActionClone, Status: plugindomain.StatusSucceeded})
	sink.Emit(plugindomain.Outcome{Slug: "b/bad", Action: plugindomain.ActionClone, Status: plugindomain.StatusFailed, Err: errors.New("exit status 128")})
	sink.Warn("careful")
	assert.Empty(t, errOut.String(), "warnings wait for the view")

	sink.Summary(plugindomain.Counts{Succeeded: 1, Failed: 1})
	sink.Close()

	assert.Contains(t, errOut.String(), "b/bad: exit status 128")
	assert.Contains(t, errOut.String(), "careful")
	assert.Contains(t, errOut.String(), "1 succeeded, 1 failed, 0 skipped")

	sink.Warn("late")
	assert.Contains(t, errOut.String(), "late")
}
