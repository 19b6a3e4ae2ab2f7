package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/releasestats/pkg/pipeline"
	"github.com/matzehuels/releasestats/pkg/report"
	"github.com/matzehuels/releasestats/pkg/stats"
)

var viewDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// viewCommand creates the interactive report viewer.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <repo_owner> <repo_name>",
		Short: "Browse the download report in the terminal",
		Args:  usageArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, closeRunner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeRunner()

			stop := c.startSpinner(ctx, fmt.Sprintf("Fetching releases of %s/%s", args[0], args[1]))
			result, err := runner.Collect(ctx, pipeline.Options{
				Owner:   args[0],
				Repo:    args[1],
				MinDays: c.opts.minDays,
			})
			stop()
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewStatsModel(args[0]+"/"+args[1], result.Records),
				tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// StatsModel - Scrollable report table
// =============================================================================

// StatsModel is the bubbletea model of the report viewer.
// Rows scroll; the header and summary stay put.
type StatsModel struct {
	Title   string
	Records []stats.Record
	Summary stats.Summary
	Height  int
	Offset  int
}

// NewStatsModel creates a viewer for records.
func NewStatsModel(title string, records []stats.Record) StatsModel {
	return StatsModel{
		Title:   title,
		Records: records,
		Summary: stats.Summarize(records),
		Height:  15,
	}
}

func (m StatsModel) Init() tea.Cmd {
	return nil
}

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Offset--
		case "down", "j":
			m.Offset++
		case "pgup", "b":
			m.Offset -= m.Height
		case "pgdown", "f", " ":
			m.Offset += m.Height
		case "home", "g":
			m.Offset = 0
		case "end", "G":
			m.Offset = len(m.Records)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 9
		if m.Height < 3 {
			m.Height = 3
		}
	}
	m.Offset = m.clampOffset(m.Offset)
	return m, nil
}

func (m StatsModel) clampOffset(off int) int {
	maxOff := len(m.Records) - m.Height
	if off > maxOff {
		off = maxOff
	}
	if off < 0 {
		off = 0
	}
	return off
}

// visible returns the records currently on screen.
func (m StatsModel) visible() []stats.Record {
	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}
	return m.Records[m.Offset:end]
}

func (m StatsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(viewDimStyle.Render("↑/↓ scroll  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	if len(m.Records) == 0 {
		b.WriteString(viewDimStyle.Render("  no releases"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(report.Render(m.visible()))
	b.WriteString("\n")

	var totals []string
	for _, p := range stats.Platforms {
		totals = append(totals, fmt.Sprintf("%s %d", p.Column, m.Summary.Totals[p.Column]))
	}
	b.WriteString(viewDimStyle.Render(fmt.Sprintf("  [%d-%d/%d]  %s",
		m.Offset+1, m.Offset+len(m.visible()), len(m.Records), strings.Join(totals, " · "))))

	return b.String()
}
