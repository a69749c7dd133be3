package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdfmailer/internal/app"
	"github.com/pdfmailer/internal/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect stored settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings with the password masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		stores, err := app.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stores.DB.Close()

		s, err := stores.Settings.Load(cmd.Context())
		if errors.Is(err, store.ErrCorruptSettings) {
			red.Println("stored settings are unreadable; saving from the UI will replace them")
			return nil
		}
		if err != nil {
			return err
		}

		password := ""
		if s.SMTPPassword != "" {
			password = "********"
		}
		printField("PDF folder", s.SelectedPdfFolderPath)
		printField("SMTP host", s.SMTPHost)
		printField("SMTP login", s.SMTPLogin)
		printField("SMTP password", password)
		return nil
	},
}

func printField(label, value string) {
	if value == "" {
		value = "(not set)"
	}
	cyan.Printf("%-14s", label)
	fmt.Println(value)
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	rootCmd.AddCommand(settingsCmd)
}
