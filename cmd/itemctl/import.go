package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/InventoryUI/internal/table"
)

var (
	importFile    string
	importPreview int
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Bulk-create items from an .xlsx, .xls or CSV file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			importFile = args[0]
		}
		if importFile == "" {
			return errors.New("no spreadsheet given: pass a file or --file")
		}
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open spreadsheet: %w", err)
		}
		defer f.Close()

		service, err := newService(cfg.Import.Timeout)
		if err != nil {
			return err
		}
		name := filepath.Base(importFile)
		out := cmd.OutOrStdout()

		if importPreview > 0 {
			p, err := service.PreviewSpreadsheet(cmd.Context(), name, f, importPreview)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (sheet %s): %d rows\n", p.FileName, p.Sheet, p.TotalRows)
			for i, row := range p.Rows {
				fmt.Fprintf(out, "  row %d:", i+2)
				for _, h := range p.Headers {
					if v, ok := row[h]; ok {
						fmt.Fprintf(out, " %s=%s", h, table.FormatValue(v))
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		}

		res, err := service.ImportSpreadsheet(cmd.Context(), name, f)
		if err != nil {
			return err
		}
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  [row %d] %s\n", e.Row, e.Error)
		}
		fmt.Fprintf(out, `
=== Import Report ===
File:       %s
Sheet:      %s
Submitted:  %d
Created:    %d
Errors:     %d
Total time: %s
=====================
`, res.FileName, res.Sheet, res.Submitted, res.Created, len(res.Errors), res.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the .xlsx, .xls or .csv file")
	importCmd.Flags().IntVar(&importPreview, "preview", 0, "show the first N rows instead of importing")
	rootCmd.AddCommand(importCmd)
}
