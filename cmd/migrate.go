package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dtroode/authgate/internal/config"
	"github.com/dtroode/authgate/internal/database"
	"github.com/dtroode/authgate/internal/repository/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Apply all pending migrations of the users table to the database named by DATABASE_URL.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if !cfg.DurableStoreConfigured() {
		return errors.New("DATABASE_URL environment variable is required")
	}

	ctx := cmd.Context()

	cmd.Println("Connecting to database...")
	conn, err := postgres.NewConnection(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WaitReady(ctx, cfg.Database.ConnectAttempts, connectBackoff); err != nil {
		return err
	}

	db := conn.SQLDB()
	defer db.Close()

	cmd.Println("Running migrations...")
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
