package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotTerminal = errors.New("the TUI needs an interactive terminal")

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotTerminal
			}
			return runTUI(app)
		},
	}
}
