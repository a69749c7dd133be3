package main

import (
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/pdfmailer/internal/app"
)

var serveExample = dedent.Dedent(`
	# Start the UI on the default address and open it in the browser
	pdfmailer serve

	# Queue sends in the background instead of waiting for the SMTP server
	pdfmailer serve --mail-delivery async

	# Headless, on another port
	pdfmailer serve --addr 127.0.0.1:8080 --open=false`,
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the local UI and API",
	Example: serveExample,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, loopback only (env ADDR)")
	serveCmd.Flags().Duration("mail-timeout", 0, "SMTP dial and send timeout (env MAIL_TIMEOUT)")
	serveCmd.Flags().String("mail-delivery", "", "sync or async (env MAIL_DELIVERY)")
	serveCmd.Flags().Bool("open", true, "open the UI in the default browser (env OPEN_BROWSER)")
	rootCmd.AddCommand(serveCmd)
}
