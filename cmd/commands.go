package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/sportsreel-backend/internal/app"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

var (
	configPath  string
	skipMigrate bool
	sweepDays   int

	rootCmd = &cobra.Command{
		Use:           "sportsreel",
		Short:         "Sports video recommendation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and run the HTTP API, worker pool and retention sweeper",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	}
	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored recommendations older than --days and exit",
		RunE:  runSweep,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migration on startup")
	rootCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migration on startup")
	sweepCmd.Flags().IntVar(&sweepDays, "days", 0, "retention window in days (defaults to retention.keep_days)")
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd)
}

func bootstrap() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return app.Config{}, nil, err
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return err
	}
	defer application.Close()

	if !skipMigrate {
		if err := application.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	log.Info("Starting sportsreel", "addr", cfg.HTTP.Addr, "env", cfg.Env)
	return application.Run(ctx)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	database, err := app.OpenDB(log, cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.AutoMigrateAll(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("Schema migrated")
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	days := sweepDays
	if days == 0 {
		days = cfg.Retention.KeepDays
	}
	ctx := cmd.Context()
	application, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return err
	}
	defer application.Close()

	deleted, err := application.Services.Recommendations.CleanupOlderThan(ctx, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d recommendations older than %d days\n", deleted, days)
	return nil
}
