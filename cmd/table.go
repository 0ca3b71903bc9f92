/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyProperty = "property"
	columnKeyValue    = "value"
)

type property struct {
	name  string
	value string
}

// propertyTable renders name/value pairs as a static two column table.
func propertyTable(title string, props []property) string {
	valueWidth := len(title)
	for _, p := range props {
		if len(p.value) > valueWidth {
			valueWidth = len(p.value)
		}
	}

	rows := make([]table.Row, 0, len(props))
	for _, p := range props {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyProperty: p.name,
			columnKeyValue:    p.value,
		}))
	}

	return table.New([]table.Column{
		table.NewColumn(columnKeyProperty, "Property", 16).
			WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Align(lipgloss.Left)),
		table.NewColumn(columnKeyValue, title, valueWidth+2).
			WithStyle(lipgloss.NewStyle().Align(lipgloss.Left)),
	}).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true)).
		View()
}
