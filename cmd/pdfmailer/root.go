package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdfmailer/internal/config"
)

var (
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
)

var rootCmd = &cobra.Command{
	Use:   "pdfmailer",
	Short: "Mail a folder of PDFs, one per recipient, through your own SMTP account",
	Long: `pdfmailer serves a small local UI for sending PDF files by email.
Each file in the selected folder is named after its recipient, for example
alice@example.org.pdf, and is sent to that address as an attachment.

Settings are stored encrypted in a local SQLite database, or in PostgreSQL
when DATABASE_URL is a postgres:// URL.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "SQLite path or postgres:// URL (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("env", "", "development or production (env ENV)")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		red.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads env and .env, then applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("database-url") {
		cfg.DatabaseURL, _ = flags.GetString("database-url")
	}
	if flags.Changed("env") {
		cfg.Env, _ = flags.GetString("env")
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.Addr = f.Value.String()
	}
	if f := flags.Lookup("mail-timeout"); f != nil && f.Changed {
		cfg.MailTimeout, _ = flags.GetDuration("mail-timeout")
	}
	if f := flags.Lookup("mail-delivery"); f != nil && f.Changed {
		cfg.MailDelivery = f.Value.String()
	}
	if f := flags.Lookup("open"); f != nil && f.Changed {
		cfg.OpenBrowser, _ = flags.GetBool("open")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
