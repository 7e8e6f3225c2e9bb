package main

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// pathColumnWidth caps columns holding destination paths or error text.
const pathColumnWidth = 60

type column struct {
	title string
	right bool
	// maxWidth > 0 shortens longer cells from the left, keeping the tail of
	// a path visible.
	maxWidth int
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if col.right {
			configs[i].Align = text.AlignRight
		}
		if col.maxWidth > 0 {
			configs[i].WidthMax = col.maxWidth
			configs[i].WidthMaxEnforcer = trimLeft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func trimLeft(value string, maxLen int) string {
	runes := []rune(value)
	if maxLen <= 1 || len(runes) <= maxLen {
		return value
	}
	return "…" + string(runes[len(runes)-maxLen+1:])
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
