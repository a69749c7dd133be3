package main

import (
	"github.com/spf13/cobra"

	"github.com/pdfmailer/internal/app"
	dbpkg "github.com/pdfmailer/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply, or with --down roll back, the settings database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Opening the stores applies pending migrations.
		stores, err := app.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stores.DB.Close()

		down, _ := cmd.Flags().GetBool("down")
		if !down {
			green.Println("migrations applied")
			return nil
		}

		dialect := dbpkg.SQLite
		if cfg.IsPostgres() {
			dialect = dbpkg.Postgres
		}
		if err := dbpkg.MigrateDown(stores.DB, dialect); err != nil {
			return err
		}
		green.Println("migrations rolled back")
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("down", false, "roll back all migrations, deleting stored settings")
	rootCmd.AddCommand(migrateCmd)
}
