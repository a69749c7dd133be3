package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/pdfmailer/internal/app"
	"github.com/pdfmailer/internal/folder"
)

var filesExample = dedent.Dedent(`
	# List the PDFs in the folder chosen in the UI
	pdfmailer files list

	# List another folder
	pdfmailer files list ~/invoices`,
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Work with the PDF folder",
}

var filesListCmd = &cobra.Command{
	Use:     "list [DIR]",
	Short:   "List the PDFs that would be mailed and their recipients",
	Example: filesExample,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		} else {
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
			if err != nil {
				return err
			}
			dir = s.SelectedPdfFolderPath
		}
		if dir == "" {
			return fmt.Errorf("no PDF folder selected; pass one as an argument")
		}

		res := folder.List(dir)
		if res.Err != nil {
			return res.Err
		}
		if len(res.Items) == 0 {
			fmt.Println("no PDF files in", dir)
			return nil
		}

		for _, item := range res.Items {
			size := "?"
			if info, err := os.Stat(filepath.Join(dir, item.Name)); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			green.Printf("%-40s", item.Email)
			fmt.Printf(" %8s  %s\n", size, item.Name)
		}
		return nil
	},
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	rootCmd.AddCommand(filesCmd)
}
