package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/auth"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli"
	"github.com/alexanderramin/hrdesk/internal/config"
	"github.com/alexanderramin/hrdesk/internal/db"
	"github.com/alexanderramin/hrdesk/internal/logging"
	"github.com/alexanderramin/hrdesk/internal/repository"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)
	session := auth.NewSession(database, uow, auth.Options{
		TenantClaim: cfg.TenantClaim,
		RoleClaim:   cfg.RoleClaim,
	}, log)

	// Credentials are read from the session on every call.
	client := api.NewClient(api.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout(),
	}, session, api.NewLogObserver(log))
	if cfg.LogoutOn401 {
		client.OnUnauthorized = session.HandleUnauthorized
	}

	screens, err := loadCatalog(cfg.ScreensFile)
	if err != nil {
		return err
	}

	gate, err := authz.NewGate(log)
	if err != nil {
		return fmt.Errorf("loading access policy: %w", err)
	}

	// Wire services
	observer := service.NewLogUseCaseObserver(log)
	guard := service.Guard{Gate: gate, Role: session.Role}
	resources := service.NewResourceService(client, guard, observer)

	app := &cli.App{
		Catalog:   screens,
		Auth:      service.NewAuthService(client, session, observer),
		Resources: resources,
		Approvals: service.NewApprovalService(client, guard, observer),
		Dashboard: service.NewDashboardService(resources, observer),
		Export:    service.NewExportService(resources, guard, observer),
		Prefs:     service.NewPrefsService(repository.NewSQLiteKVRepo(database), log),

		Gate: gate,
		Role: session.Role,
		Log:  log,

		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce(),
	}

	// Prompts and the TUI are only used on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	log.Debug("starting", zap.String("api_url", cfg.APIURL), zap.String("db", cfg.DBPath))

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// loadCatalog reads the screen catalog, preferring path when set.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Load()
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading screens from %s: %w", path, err)
	}
	return c, nil
}
