package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeInto(c *commandBar, s string) {
	for _, r := range s {
		c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestCommandBar_SuggestsCommands(t *testing.T) {
	env := testApp(t)
	c := newCommandBar(&SharedState{App: env.app})
	c.Focus()

	typeInto(&c, "de")

	assert.Equal(t, []string{"delete"}, c.input.AvailableSuggestions())
}

func TestCommandBar_SuggestsReadableScreens(t *testing.T) {
	env := testApp(t)
	env.loginAs(t, "employee")
	c := newCommandBar(&SharedState{App: env.app})
	c.Focus()

	typeInto(&c, "open ")
	all := c.input.AvailableSuggestions()
	assert.Contains(t, all, "open vacancies")
	assert.NotContains(t, all, "open users")

	typeInto(&c, "vac")
	assert.Equal(t, []string{"open vacancies"}, c.input.AvailableSuggestions())
}

func TestCommandBar_NoSuggestionsAfterScreenArg(t *testing.T) {
	env := testApp(t)
	c := newCommandBar(&SharedState{App: env.app})
	c.Focus()

	typeInto(&c, "list vacancies ")

	assert.Empty(t, c.input.AvailableSuggestions())
}

func TestCommandBar_HistoryNavigation(t *testing.T) {
	env := testApp(t)
	c := newCommandBar(&SharedState{App: env.app})
	c.addHistory("open vacancies")
	c.addHistory("dashboard")
	c.Focus()

	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "dashboard", c.input.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "open vacancies", c.input.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "open vacancies", c.input.Value(), "stops at the oldest entry")

	c.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "dashboard", c.input.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, c.input.Value())

	// History survives a restart through the local store.
	reloaded := newCommandBar(&SharedState{App: env.app})
	assert.Equal(t, []string{"open vacancies", "dashboard"}, reloaded.history)
	stored, err := env.app.Prefs.LoadHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"open vacancies", "dashboard"}, stored)
}

func TestCommandBar_EnterBlursAndRuns(t *testing.T) {
	env := testApp(t)
	c := newCommandBar(&SharedState{App: env.app})
	c.Focus()
	typeInto(&c, "quit")

	cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, c.Focused())
	assert.Empty(t, c.input.Value())
	require.NotNil(t, cmd)
	assert.IsType(t, quitMsg{}, cmd())
}

func TestCommandBar_EmptyEnterDoesNothing(t *testing.T) {
	env := testApp(t)
	c := newCommandBar(&SharedState{App: env.app})
	c.Focus()

	assert.Nil(t, c.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Empty(t, c.history)
}

func TestCommandBar_ExecuteCommand(t *testing.T) {
	env := testApp(t)
	c := newCommandBar(&SharedState{App: env.app})

	tests := []struct {
		input string
		check func(t *testing.T, msg tea.Msg)
	}{
		{"home", func(t *testing.T, msg tea.Msg) { assert.IsType(t, homeMsg{}, msg) }},
		{"exit", func(t *testing.T, msg tea.Msg) { assert.IsType(t, quitMsg{}, msg) }},
		{"dashboard", func(t *testing.T, msg tea.Msg) {
			push, ok := msg.(pushViewMsg)
			require.True(t, ok)
			assert.Equal(t, ViewDashboard, push.view.ID())
		}},
		{"o jobs", func(t *testing.T, msg tea.Msg) {
			push, ok := msg.(pushViewMsg)
			require.True(t, ok)
			assert.Equal(t, "Vacancies", push.view.Title())
		}},
		{"login", func(t *testing.T, msg tea.Msg) {
			push, ok := msg.(pushViewMsg)
			require.True(t, ok, "login without flags opens a form")
			assert.Equal(t, ViewForm, push.view.ID())
		}},
		{"open", func(t *testing.T, msg tea.Msg) {
			out, ok := msg.(cmdOutputMsg)
			require.True(t, ok)
			assert.Contains(t, out.output, "usage: open <screen>")
		}},
		{"help", func(t *testing.T, msg tea.Msg) {
			out, ok := msg.(cmdOutputMsg)
			require.True(t, ok)
			assert.Contains(t, out.output, "dashboard")
		}},
		{"logout", func(t *testing.T, msg tea.Msg) {
			out, ok := msg.(cmdOutputMsg)
			require.True(t, ok)
			assert.True(t, out.refresh, "session changes refresh open views")
			assert.Contains(t, out.output, "Logged out.")
		}},
		{"screens", func(t *testing.T, msg tea.Msg) {
			out, ok := msg.(cmdOutputMsg)
			require.True(t, ok)
			assert.False(t, out.refresh)
			assert.Contains(t, out.output, "vacancies")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := c.executeCommand(tt.input)
			require.NotNil(t, cmd)
			tt.check(t, cmd())
		})
	}

	assert.Nil(t, c.executeCommand("clear"))
}

func TestCommandBar_OpenDeniedScreen(t *testing.T) {
	env := testApp(t)
	env.loginAs(t, "employee")
	c := newCommandBar(&SharedState{App: env.app})

	msg := c.executeCommand("open users")()

	out, ok := msg.(cmdOutputMsg)
	require.True(t, ok)
	assert.Contains(t, out.output, `role "employee" may not read users`)
}

func TestFilterSuggestions(t *testing.T) {
	pool := []string{"list", "login", "logout", "delete"}
	assert.Equal(t, pool, filterSuggestions(pool, ""))
	assert.Equal(t, []string{"login", "logout"}, filterSuggestions(pool, "LO"))
	assert.Empty(t, filterSuggestions(pool, "zz"))
}

func TestCaptureCobraOutput_ErrorsAreInline(t *testing.T) {
	env := testApp(t)

	out := captureCobraOutput(env.app, []string{"get", "vacancies"})

	assert.Contains(t, out, "accepts 2 arg(s)")
}

func TestSuggestAlternatives(t *testing.T) {
	env := testApp(t)
	root := NewRootCmd(env.app)

	hint := suggestAlternatives(root, "aprove")
	assert.Contains(t, hint, "Did you mean:")
	assert.Contains(t, hint, "approve")

	assert.Empty(t, suggestAlternatives(root, "zzzz"))
}
