package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Data messages are delivered to every view on the stack, so each carries
// the owner it belongs to.
var viewSeq atomic.Uint64

func nextOwner(prefix string) string {
	return fmt.Sprintf("%s#%d", prefix, viewSeq.Add(1))
}

// ownedMsg wraps a message produced by a view's child component.
type ownedMsg struct {
	owner string
	msg   tea.Msg
}

func tagCmd(owner string, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if msg == nil {
			return nil
		}
		return ownedMsg{owner: owner, msg: msg}
	}
}

// mutationDoneMsg reports the outcome of a write started from a view.
type mutationDoneMsg struct {
	owner   string
	text    string
	err     error
	refetch bool
	deleted bool
}

// errorText is the status-bar wording for a failed call.
func errorText(err error) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return "Session expired. Run :login"
	}
	return api.Message(err, err.Error())
}

// mutationFlash renders a mutationDoneMsg for the status bar.
func mutationFlash(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		return flashCmd(formatter.ErrorLine(errorText(msg.err)))
	}
	if msg.text == "" {
		return nil
	}
	return flashCmd(formatter.SuccessLine(msg.text))
}

func deniedFlash(err error) tea.Cmd {
	return flashCmd(formatter.ErrorLine(err.Error()))
}

// editRecordCmd opens the edit form for rec and patches the changed fields.
func editRecordCmd(state *SharedState, owner string, screen catalog.Screen, rec domain.Record) tea.Cmd {
	app := state.App
	if err := requireAllowed(context.Background(), app, screen, authz.ActionUpdate); err != nil {
		return deniedFlash(err)
	}
	form, fv := editForm(rec)
	if form == nil {
		return flashCmd(formatter.Dim("Nothing to edit."))
	}
	title := fmt.Sprintf("Edit %s %s", screen.Name, rec.ID())
	return startWizardCmd(state, title, form, func() tea.Cmd {
		return func() tea.Msg {
			body, err := editedBody(rec, fv)
			if err != nil {
				return mutationDoneMsg{owner: owner, err: err}
			}
			res, err := app.Resources.Patch(context.Background(), screen, rec, body)
			if err != nil {
				return mutationDoneMsg{owner: owner, err: err}
			}
			if !res.Changed {
				return mutationDoneMsg{owner: owner, text: "No changes."}
			}
			return mutationDoneMsg{owner: owner, text: fmt.Sprintf("Updated %s %s.", screen.Name, rec.ID()), refetch: true}
		}
	})
}

// deleteRecordCmd confirms and deletes rec.
func deleteRecordCmd(state *SharedState, owner string, screen catalog.Screen, rec domain.Record) tea.Cmd {
	app := state.App
	if err := requireAllowed(context.Background(), app, screen, authz.ActionDelete); err != nil {
		return deniedFlash(err)
	}
	confirmed := false
	form := confirmForm(fmt.Sprintf("Delete %s %s?", screen.Name, rec.ID()), &confirmed)
	return startWizardCmd(state, "Delete", form, func() tea.Cmd {
		if !confirmed {
			return flashCmd(formatter.Dim("Cancelled."))
		}
		return func() tea.Msg {
			if err := app.Resources.Delete(context.Background(), screen, rec.ID()); err != nil {
				return mutationDoneMsg{owner: owner, err: err}
			}
			return mutationDoneMsg{owner: owner, text: fmt.Sprintf("Deleted %s %s.", screen.Name, rec.ID()), refetch: true, deleted: true}
		}
	})
}

// decideCmd asks for a comment and records an approval decision.
func decideCmd(state *SharedState, owner string, screen catalog.Screen, rec domain.Record, decision service.Decision) tea.Cmd {
	app := state.App
	if err := requireAllowed(context.Background(), app, screen, authz.ActionApprove); err != nil {
		return deniedFlash(err)
	}
	var comment string
	form := commentForm(decision, &comment)
	title := fmt.Sprintf("%s %s", decisionTitle(decision), rec.ID())
	return startWizardCmd(state, title, form, func() tea.Cmd {
		return func() tea.Msg {
			if _, err := app.Approvals.Decide(context.Background(), rec.ID(), decision, comment); err != nil {
				return mutationDoneMsg{owner: owner, err: err}
			}
			return mutationDoneMsg{owner: owner, text: fmt.Sprintf("%s is now %s.", rec.ID(), decidedStatus(decision)), refetch: true}
		}
	})
}

func decisionTitle(d service.Decision) string {
	if d == service.Reject {
		return "Reject"
	}
	return "Approve"
}

// draftLoadedMsg carries the saved create-form values for a screen.
type draftLoadedMsg struct {
	owner string
	draft map[string]string
}

// loadDraftCmd reads the unfinished create form for screen.
func loadDraftCmd(state *SharedState, owner string, screen catalog.Screen) tea.Cmd {
	app := state.App
	if err := requireAllowed(context.Background(), app, screen, authz.ActionCreate); err != nil {
		return deniedFlash(err)
	}
	return func() tea.Msg {
		draft, err := app.Prefs.LoadDraft(context.Background(), screen)
		if err != nil {
			app.logger().Warn("loading form draft", zap.String("screen", screen.Name), zap.Error(err))
		}
		return draftLoadedMsg{owner: owner, draft: draft}
	}
}

// createRecordCmd shows the create form prefilled from draft. The values
// are kept as a draft when the form is cancelled or the create fails.
func createRecordCmd(state *SharedState, owner string, screen catalog.Screen, draft map[string]string) tea.Cmd {
	app := state.App
	form, fv := createForm(screen, draft)
	saveDraft := func() {
		if err := app.Prefs.SaveDraft(context.Background(), screen, fv.Map()); err != nil {
			app.logger().Warn("saving form draft", zap.String("screen", screen.Name), zap.Error(err))
		}
	}

	w := newWizardView(state, "New "+screen.Name, form, func() tea.Cmd {
		return func() tea.Msg {
			ctx := context.Background()
			body, err := service.BuildBody(nil, fv.assignments())
			if err != nil {
				saveDraft()
				return mutationDoneMsg{owner: owner, err: err}
			}
			rec, err := app.Resources.Create(ctx, screen, body)
			if err != nil {
				saveDraft()
				return mutationDoneMsg{owner: owner, err: err}
			}
			if err := app.Prefs.ClearDraft(ctx, screen); err != nil {
				app.logger().Warn("clearing form draft", zap.String("screen", screen.Name), zap.Error(err))
			}
			return mutationDoneMsg{owner: owner, text: fmt.Sprintf("Created %s %s.", screen.Name, rec.ID()), refetch: true}
		}
	}).onCancel(func() tea.Cmd {
		saveDraft()
		return nil
	})
	return pushView(w)
}

// exportListingCmd writes the filtered listing to <screen>.xlsx.
func exportListingCmd(state *SharedState, owner string, screen catalog.Screen, req service.ExportRequest) tea.Cmd {
	app := state.App
	if err := requireAllowed(context.Background(), app, screen, authz.ActionExport); err != nil {
		return deniedFlash(err)
	}
	path := screen.Name + ".xlsx"
	return func() tea.Msg {
		n, err := app.Export.ExportFile(context.Background(), screen, req, path)
		if err != nil {
			return mutationDoneMsg{owner: owner, err: err}
		}
		return mutationDoneMsg{owner: owner, text: fmt.Sprintf("Exported %s to %s.", formatter.Plural(n, "row"), path)}
	}
}

// screenTitle is the screen's display name.
func screenTitle(screen catalog.Screen) string {
	if screen.Title != "" {
		return screen.Title
	}
	return screen.Name
}
