package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/hrdesk/internal/auth"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password, token, refresh string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		Long: "Sign in with email and password, or store an access token issued elsewhere.\n" +
			"Prompts for missing credentials when run on a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			var (
				st  auth.State
				err error
			)
			if token != "" {
				st, err = app.Auth.LoginWithToken(ctx, auth.Tokens{AccessToken: token, RefreshToken: refresh})
			} else {
				if (email == "" || password == "") && app.interactive() {
					if err := loginForm(&email, &password).Run(); err != nil {
						if errors.Is(err, huh.ErrUserAborted) {
							fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
							return nil
						}
						return err
					}
				}
				st, err = app.Auth.Login(ctx, email, password)
			}
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Logged in."))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSession(st, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&token, "token", "", "store this access token instead of signing in")
	cmd.Flags().StringVar(&refresh, "refresh-token", "", "refresh token to store with --token")
	cmd.MarkFlagsMutuallyExclusive("token", "email")

	return cmd
}

// loginForm prompts for email and password.
func loginForm(email, password *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(email).
				Validate(requiredText("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(requiredText("password")),
		),
	).WithTheme(hrdeskHuhTheme()).WithShowHelp(false)
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Logout(commandContext(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Logged out."))
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Auth.Current(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("reading session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSession(st, app.now()))
			return nil
		},
	}
}
