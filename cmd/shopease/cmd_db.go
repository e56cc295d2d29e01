package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/config"
	_ "github.com/shashiranjanraj/shopease/database/migrations"
	"github.com/shashiranjanraj/shopease/database/seeders"
	"github.com/shashiranjanraj/shopease/internal/server"
	"github.com/shashiranjanraj/shopease/pkg/database"
	"github.com/shashiranjanraj/shopease/pkg/migration"
)

// sqlRunner connects the SQL store for the migrate commands.
func sqlRunner() (*migration.Runner, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}
	if err := database.Connect(); err != nil {
		return nil, nil, err
	}
	return migration.New(database.DB), func() { _ = database.Close() }, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending migrations (or ensure indexes on mongo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.StoreDriver() == "mongo" {
			ctx := context.Background()
			if err := database.ConnectMongo(ctx); err != nil {
				return err
			}
			defer database.CloseMongo(ctx) //nolint:errcheck
			fmt.Println("Ensuring mongo indexes…")
			return repositories.EnsureIndexes(ctx, database.Mongo)
		}

		r, done, err := sqlRunner()
		if err != nil {
			return err
		}
		defer done()
		ran, err := r.Run()
		for _, name := range ran {
			fmt.Println("  migrated:", name)
		}
		if err == nil && len(ran) == 0 {
			fmt.Println("Nothing to migrate.")
		}
		return err
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, done, err := sqlRunner()
		if err != nil {
			return err
		}
		defer done()
		rolled, err := r.Rollback()
		for _, name := range rolled {
			fmt.Println("  rolled back:", name)
		}
		return err
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, done, err := sqlRunner()
		if err != nil {
			return err
		}
		defer done()
		statuses, err := r.Status()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, s := range statuses {
			batch := "-"
			if s.Ran {
				batch = fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%t\t%s\n", s.Name, s.Ran, batch)
		}
		return w.Flush()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and the sample catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, seeders.Env{Repos: app.Repos, Services: app.Services, Out: os.Stdout})
	},
}
