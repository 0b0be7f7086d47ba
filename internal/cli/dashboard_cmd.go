package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, status distributions and budget sums",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			screens, err := dashboardScreens(app, only)
			if err != nil {
				return err
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), app.interactive(), "Loading dashboard...")
			sum, err := app.Dashboard.Summary(ctx, screens)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDashboard(sum))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "screen", nil, "limit to these screens")
	return cmd
}

// dashboardScreens returns the named screens, or every screen.
func dashboardScreens(app *App, names []string) ([]catalog.Screen, error) {
	if len(names) == 0 {
		return readableScreens(app), nil
	}
	out := make([]catalog.Screen, 0, len(names))
	for _, n := range names {
		s, err := resolveScreen(app, n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func newExportCmd(app *App) *cobra.Command {
	var (
		out         string
		all         bool
		page, limit int
		search      string
		filters     assignments
	)

	cmd := &cobra.Command{
		Use:   "export <screen>",
		Short: "Write a listing to an Excel workbook",
		Example: "  hrdesk export vacancies --all --out vacancies.xlsx\n" +
			"  hrdesk export employees --filter department=IT --out - > it.xlsx",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			screen, err := resolveScreen(app, args[0])
			if err != nil {
				return err
			}
			if err := requireAllowed(ctx, app, screen, authz.ActionExport); err != nil {
				return err
			}
			values, err := filterValues(screen, filters)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = app.pageSize()
			}
			if out == "" {
				out = screen.Name + ".xlsx"
			}
			req := service.ExportRequest{
				Search:   search,
				Filters:  values,
				Page:     max(page-1, 0),
				Limit:    limit,
				AllPages: all,
			}

			var n int
			if out == "-" {
				n, err = app.Export.Export(ctx, screen, req, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.SuccessLine(fmt.Sprintf("Exported %s.", formatter.Plural(n, "row"))))
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(out), ".xlsx") {
				out += ".xlsx"
			}
			if n, err = app.Export.ExportFile(ctx, screen, req, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf("Exported %s to %s.", formatter.Plural(n, "row"), out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout (default <screen>.xlsx)")
	cmd.Flags().BoolVar(&all, "all", false, "export every page")
	cmd.Flags().IntVar(&page, "page", 1, "page to export without --all")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows per page")
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().Var(&filters, "filter", "filter as key=value; repeatable")
	return cmd
}
