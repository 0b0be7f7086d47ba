package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// newDecisionCmd builds "approve" or "reject".
func newDecisionCmd(app *App, decision service.Decision) *cobra.Command {
	var comment string

	short := "Approve a pending request"
	if decision == service.Reject {
		short = "Reject a pending request (a comment is required)"
	}

	cmd := &cobra.Command{
		Use:   string(decision) + " <approval-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if comment == "" && decision == service.Reject && app.interactive() {
				if err := commentForm(decision, &comment).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return nil
					}
					return err
				}
			}

			rec, err := app.Approvals.Decide(ctx, args[0], decision, comment)
			if err != nil {
				return err
			}
			status := rec.String("status")
			if status == "" {
				status = decidedStatus(decision)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf("%s is now %s.", args[0], formatter.StatusPill(status))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "m", "", "decision comment")
	return cmd
}

func decidedStatus(d service.Decision) string {
	if d == service.Reject {
		return "rejected"
	}
	return "approved"
}
