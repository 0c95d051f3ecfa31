package cmd

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = cellStyle.Bold(true)
)

// printTable writes rows under headers. When footer is true the last row
// is rendered bold as a totals line.
func printTable(w io.Writer, headers []string, rows [][]string, footer bool) {
	last := len(rows) - 1
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case footer && row == last:
				return footerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
