package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack,
// returning to the previous view.
type popViewMsg struct{}

// replaceViewMsg replaces the current top view with a new one.
type replaceViewMsg struct {
	view View
}

// refreshViewMsg asks every view on the stack to reload its data.
type refreshViewMsg struct{}

// cmdOutputMsg carries text output from a command execution
// to be displayed transiently in the current view.
type cmdOutputMsg struct {
	output string
	// refresh asks open views to reload after the command changed data.
	refresh bool
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// flashMsg shows a one-line notice in the status bar until the next key.
type flashMsg struct {
	text string
}

// flashCmd returns a tea.Cmd that sends a flashMsg.
func flashCmd(text string) tea.Cmd {
	return func() tea.Msg { return flashMsg{text: text} }
}

// quitMsg signals the app to quit.
type quitMsg struct{}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// popView returns a tea.Cmd that pops the current view.
func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

// replaceView returns a tea.Cmd that replaces the top view.
func replaceView(v View) tea.Cmd {
	return func() tea.Msg { return replaceViewMsg{view: v} }
}

// outputCmd returns a tea.Cmd that sends a cmdOutputMsg.
func outputCmd(s string) tea.Cmd {
	if s == "" {
		return nil
	}
	return func() tea.Msg { return cmdOutputMsg{output: s} }
}

// asyncMutationCmd is asyncOutputCmd for commands that change backend data
// or the session.
func asyncMutationCmd(fn func() string) tea.Cmd {
	return func() tea.Msg {
		return cmdOutputMsg{output: fn(), refresh: true}
	}
}

// asyncOutputCmd wraps a blocking function in a tea.Cmd that runs
// asynchronously. The function's string result is delivered as a cmdOutputMsg.
func asyncOutputCmd(fn func() string) tea.Cmd {
	return func() tea.Msg {
		result := fn()
		if result == "" {
			return nil
		}
		return cmdOutputMsg{output: result}
	}
}

// homeMsg drops every view above the home view.
type homeMsg struct{}
