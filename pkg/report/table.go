package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/releasestats/pkg/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// Table builds a lipgloss table of records with the CSV header.
func Table(records []stats.Record) *table.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = Row(r)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col < 2:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

// Render returns records as a printable table.
func Render(records []stats.Record) string {
	return Table(records).Render()
}

// WriteTable writes [Render] output followed by a newline.
func WriteTable(w io.Writer, records []stats.Record) error {
	_, err := io.WriteString(w, Render(records)+"\n")
	return err
}

// Write encodes records to w in format.
func Write(w io.Writer, format string, records []stats.Record) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatTable:
		return WriteTable(w, records)
	}
	return &UnsupportedFormatError{Format: format}
}

// Export writes records to path in format.
func Export(records []stats.Record, format, path string) error {
	if !slices.Contains(Formats, strings.ToLower(format)) {
		return &UnsupportedFormatError{Format: format}
	}
	return writeFile(path, func(w io.Writer) error { return Write(w, format, records) })
}

// UnsupportedFormatError is returned for unknown output formats.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (want one of %s)", e.Format, strings.Join(Formats, ", "))
}
