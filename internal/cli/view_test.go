package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/releasestats/pkg/stats"
)

func viewRecords(n int) []stats.Record {
	records := make([]stats.Record, n)
	for i := range records {
		records[i] = stats.Record{
			Release:     fmt.Sprintf("v1.%d.0", i),
			PublishedAt: time.Date(2021, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Win:         i,
		}
	}
	return records
}

func press(m tea.Model, keys ...string) StatsModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "pgdown":
			msg = tea.KeyMsg{Type: tea.KeyPgDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m.(StatsModel)
}

func TestStatsModel_Scroll(t *testing.T) {
	m := NewStatsModel("acme/app", viewRecords(40))
	m.Height = 10

	assert.Equal(t, 1, press(m, "down").Offset)
	assert.Equal(t, 0, press(m, "up").Offset)
	assert.Equal(t, 10, press(m, "pgdown").Offset)
	assert.Equal(t, 30, press(m, "G").Offset, "end stops at the last full page")
	assert.Equal(t, 0, press(m, "G", "g").Offset)
}

func TestStatsModel_WindowSize(t *testing.T) {
	m := NewStatsModel("acme/app", viewRecords(5))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 4})
	assert.Equal(t, 3, next.(StatsModel).Height)
}

func TestStatsModel_Quit(t *testing.T) {
	_, cmd := NewStatsModel("acme/app", nil).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
}

func TestStatsModel_View(t *testing.T) {
	m := NewStatsModel("acme/app", viewRecords(40))
	m.Height = 5
	m = press(m, "down", "down")

	out := m.View()
	assert.Contains(t, out, "acme/app")
	assert.Contains(t, out, "v1.2.0")
	assert.NotContains(t, out, "v1.1.0")
	assert.Contains(t, out, "[3-7/40]")
	assert.Contains(t, out, "win 780")

	assert.True(t, strings.Contains(NewStatsModel("x", nil).View(), "no releases"))
}
