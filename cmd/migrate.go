package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/pkg/db"
)

// MigrateCommand creates the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run agent mirror database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
			databaseFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return RunMigrations(c.String("config"), c.String("database"), c.Bool("status"))
		},
	}
}

// RunMigrations applies, or only reports, pending mirror migrations
func RunMigrations(configPath, database string, statusOnly bool) error {
	path, err := mirrorPath(configPath, database)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Database does not exist, will be created on first use: %s\n", path)
		return nil
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warnf("failed to close database: %v", err)
		}
	}()

	manager := db.NewMigrationManager(conn)
	if err := manager.EnsureMigrationsTable(); err != nil {
		return fmt.Errorf("ensuring migrations table: %w", err)
	}

	if statusOnly {
		return showMigrationStatus(manager)
	}

	if err := manager.ApplyPendingMigrations(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	fmt.Println("All migrations completed successfully")
	return nil
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(manager *db.MigrationManager) error {
	applied, err := manager.GetAppliedMigrations()
	if err != nil {
		return err
	}
	available, err := manager.GetAvailableMigrations()
	if err != nil {
		return err
	}

	var pending []db.Migration
	fmt.Printf("Applied migrations: %d\n", len(applied))
	for _, migration := range available {
		appliedAt, ok := applied[migration.Version]
		if !ok {
			pending = append(pending, migration)
			continue
		}
		fmt.Printf("  ✓ %03d: %s (applied: %s)\n", migration.Version, migration.Name, appliedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Printf("Pending migrations: %d\n", len(pending))
	for _, migration := range pending {
		fmt.Printf("  • %03d: %s\n", migration.Version, migration.Name)
	}
	if len(pending) == 0 {
		fmt.Println("  (none - database is up to date)")
	}
	return nil
}
