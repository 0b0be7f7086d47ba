package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds references to all services used by CLI commands and the TUI.
type App struct {
	Catalog   *catalog.Catalog
	Auth      service.AuthService
	Resources service.ResourceService
	Approvals service.ApprovalService
	Dashboard service.DashboardService
	Export    service.ExportService
	Prefs     service.PrefsService

	// Gate and Role hide screens and actions the role may not use. Both may
	// be nil, in which case nothing is hidden.
	Gate *authz.Gate
	Role func(ctx context.Context) string

	Log *zap.Logger

	PageSize       int
	SearchDebounce time.Duration

	// IsInteractive reports whether stdin is a terminal. Prompts and the
	// TUI are only used when it returns true.
	IsInteractive func() bool

	// Now is the clock used for token expiry display.
	Now func() time.Time
}

// Allowed reports whether the current role may perform action on screen.
func (a *App) Allowed(ctx context.Context, screen catalog.Screen, action string) bool {
	if a.Gate == nil {
		return true
	}
	role := ""
	if a.Role != nil {
		role = a.Role(ctx)
	}
	return a.Gate.Allowed(role, screen.AuthzResource(), action)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) pageSize() int {
	if a.PageSize > 0 {
		return a.PageSize
	}
	return 10
}

func (a *App) logger() *zap.Logger {
	if a.Log != nil {
		return a.Log
	}
	return zap.NewNop()
}

// NewRootCmd creates the top-level "hrdesk" command and registers all
// subcommands against the provided App. Without arguments on a terminal it
// opens the TUI.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "hrdesk",
		Short: "Terminal dashboard for the HR administration backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newScreensCmd(app),
		newListCmd(app),
		newGetCmd(app),
		newCreateCmd(app),
		newUpdateCmd(app),
		newDeleteCmd(app),
		newDecisionCmd(app, service.Approve),
		newDecisionCmd(app, service.Reject),
		newDashboardCmd(app),
		newExportCmd(app),
		newTUICmd(app),
	)

	return root
}

// commandContext returns the command's context, which cobra leaves nil
// when Execute is used instead of ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
