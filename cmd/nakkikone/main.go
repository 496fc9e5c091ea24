package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/cmd/nakkikone/commands"
	"github.com/jkoskela/nakkikone/internal/config"
	"github.com/jkoskela/nakkikone/pkg/db"
	"github.com/jkoskela/nakkikone/pkg/postgres"
	"github.com/jkoskela/nakkikone/pkg/utils/logging"
)

var app *commands.AppContext

func main() {
	rootCmd := &cobra.Command{
		Use:   "nakkikone",
		Short: "Nakkikone - volunteer shift booking for events",
		Long:  `Manages per-event volunteer programs: shift definitions, slot bookings, and occupancy views.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.Postgres != nil {
					app.Postgres.Close()
				}
				if app.Logger != nil {
					app.Logger.Sync()
				}
			}
		},
	}

	rootCmd.AddCommand(commands.ServeCmd(appRef()))
	rootCmd.AddCommand(commands.MigrateCmd(appRef()))
	rootCmd.AddCommand(commands.ListShiftsCmd(appRef()))
	rootCmd.AddCommand(commands.OccupancyCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared context struct; it is populated by initApp
// before any RunE fires
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, and storage
func initApp() error {
	app = appRef()
	app.Ctx = context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Cfg = cfg

	app.Logger, err = logging.InitLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", cfg.Env))

	app.Catalog = config.NewCatalog(cfg)
	app.Directory = config.NewDirectory(cfg)

	if cfg.DatabaseURL != "" {
		app.Logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.Postgres = pg
		app.Store = pg
		app.Logger.Debug("Database connection established")
	} else {
		app.Logger.Warn("No database configured, using in-memory store")
		app.Store = db.NewMemoryStore()
	}

	return nil
}
