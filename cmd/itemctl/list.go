package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/table"
)

var (
	listPage int
	listSize int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService(cfg.Backend.Timeout)
		if err != nil {
			return err
		}
		page, err := service.ListPage(cmd.Context(), listPage, listSize)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPART\tNAME\tQTY\tSLOC\tREORDER")
		for _, it := range page.Items {
			rec := it.Record()
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				it.IDString(),
				cell(rec, core.FieldIntPartNum),
				cell(rec, core.FieldIntName),
				cell(rec, core.FieldQuantity),
				cell(rec, core.FieldSloc),
				cell(rec, core.FieldReOrder))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d items)\n", listPage, page.TotalPages, page.TotalItems)
		return nil
	},
}

func cell(rec table.Record, key string) string {
	v := rec[key]
	if table.IsNil(v) {
		return table.Placeholder
	}
	return table.FormatValue(v)
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number, starting at 1")
	listCmd.Flags().IntVar(&listSize, "size", 10, "items per page")
	rootCmd.AddCommand(listCmd)
}
