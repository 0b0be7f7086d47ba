package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errNeedsConfirmation is returned by destructive commands run without a
// terminal and without --yes.
var errNeedsConfirmation = errors.New("refusing to continue without --yes")

func newCreateCmd(app *App) *cobra.Command {
	var (
		sets assignments
		data string
	)

	cmd := &cobra.Command{
		Use:   "create <screen>",
		Short: "Create a record",
		Long: "Create a record from --set assignments (title=Analyst, salary=5000,\n" +
			"branch.id=b-1). Without assignments on a terminal a form is shown,\n" +
			"prefilled with the values of the last unfinished form for the screen.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			screen, err := resolveScreen(app, args[0])
			if err != nil {
				return err
			}
			if err := requireAllowed(ctx, app, screen, authz.ActionCreate); err != nil {
				return err
			}

			fromForm := len(sets) == 0 && data == "" && app.interactive()
			if fromForm {
				draft, err := app.Prefs.LoadDraft(ctx, screen)
				if err != nil {
					return err
				}
				form, fv := createForm(screen, draft)
				runErr := form.Run()
				if err := app.Prefs.SaveDraft(ctx, screen, fv.Map()); err != nil {
					app.logger().Warn("saving form draft", zap.String("screen", screen.Name), zap.Error(err))
				}
				if errors.Is(runErr, huh.ErrUserAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled. Values kept for next time.")
					return nil
				}
				if runErr != nil {
					return runErr
				}
				sets = fv.assignments()
			}

			body, err := service.BuildBody([]byte(data), sets)
			if err != nil {
				return err
			}
			rec, err := app.Resources.Create(ctx, screen, body)
			if err != nil {
				return err
			}
			if fromForm {
				if err := app.Prefs.ClearDraft(ctx, screen); err != nil {
					app.logger().Warn("clearing form draft", zap.String("screen", screen.Name), zap.Error(err))
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf("Created %s %s.", screen.Name, rec.ID())))
			return nil
		},
	}

	cmd.Flags().Var(&sets, "set", "field assignment key=value; repeatable")
	cmd.Flags().StringVar(&data, "data", "", "JSON object used as the base body")
	return cmd
}

func newUpdateCmd(app *App) *cobra.Command {
	var (
		sets    assignments
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "update <screen> <id>",
		Short: "Change fields of a record",
		Long: "Fetch the record, apply --set assignments (prefix a path with - to remove\n" +
			"it) and send the difference as a JSON merge patch. --replace sends the\n" +
			"whole document with PUT instead.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			screen, err := resolveScreen(app, args[0])
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return fmt.Errorf("nothing to update: pass at least one --set")
			}
			original, err := app.Resources.Get(ctx, screen, args[1])
			if err != nil {
				return err
			}
			modified, err := service.BuildBody(original.Raw(), sets)
			if err != nil {
				return err
			}

			if replace {
				if _, err := app.Resources.Replace(ctx, screen, args[1], modified); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf("Replaced %s %s.", screen.Name, args[1])))
				return nil
			}

			res, err := app.Resources.Patch(ctx, screen, original, modified)
			if err != nil {
				return err
			}
			if !res.Changed {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No changes."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf("Updated %s %s.", screen.Name, args[1])))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("patch: "+string(res.Patch)))
			return nil
		},
	}

	cmd.Flags().Var(&sets, "set", "field assignment key=value, or -key to remove; repeatable")
	cmd.Flags().BoolVar(&replace, "replace", false, "send the full document with PUT")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <screen> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			screen, err := resolveScreen(app, args[0])
			if err != nil {
				return err
			}
			if err := requireAllowed(ctx, app, screen, authz.ActionDelete); err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return errNeedsConfirmation
				}
				confirmed := false
				if err := confirmForm(fmt.Sprintf("Delete %s %s?", screen.Name, args[1]), &confirmed).Run(); err != nil && !errors.Is(err, huh.ErrUserAborted) {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := app.Resources.Delete(ctx, screen, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf("Deleted %s %s.", screen.Name, args[1])))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
