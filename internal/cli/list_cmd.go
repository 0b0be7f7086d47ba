package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newScreensCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "List the available screens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			readable := func(s catalog.Screen) bool { return app.Allowed(ctx, s, authz.ActionRead) }
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatScreens(app.Catalog.Screens(), readable))
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var (
		page, limit int
		search      string
		filters     assignments
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "list <screen>",
		Short: "Show one page of a screen",
		Example: "  hrdesk list vacancies --search engineer --filter department=IT,HR\n" +
			"  hrdesk list budgets --filter fiscalYear=2024..2025 --page 2",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			screen, err := resolveScreen(app, args[0])
			if err != nil {
				return err
			}
			values, err := filterValues(screen, filters)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = app.pageSize()
			}

			result, err := pageOf(ctx, app.Resources, screen, listingRequest{
				Page:    max(page-1, 0),
				Limit:   limit,
				Search:  search,
				Filters: values,
			})
			if err != nil {
				return err
			}

			if asJSON {
				if result.Items == nil {
					result.Items = []domain.Record{}
				}
				return writeJSON(cmd.OutOrStdout(), result.Items)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatListing(screen, result))
			if values.Active(screen.Filters) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("filters: "+values.Summary(screen.Filters)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows per page (default from HRDESK_PAGE_SIZE)")
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().Var(&filters, "filter", "filter as key=value; repeatable")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func newGetCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <screen> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := resolveScreen(app, args[0])
			if err != nil {
				return err
			}
			rec, err := app.Resources.Get(commandContext(cmd), screen, args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecord(screen.Title+" "+args[1], rec))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return cmd
}

// resolveScreen finds a screen by name, alias or unique fuzzy match.
func resolveScreen(app *App, name string) (catalog.Screen, error) {
	return app.Catalog.Resolve(name)
}

// requireAllowed fails early for actions the gate would refuse, before any
// prompt is shown.
func requireAllowed(ctx context.Context, app *App, screen catalog.Screen, action string) error {
	if app.Allowed(ctx, screen, action) {
		return nil
	}
	role := ""
	if app.Role != nil {
		role = app.Role(ctx)
	}
	return &authz.DeniedError{Role: role, Resource: screen.AuthzResource(), Action: action}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
