package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

func wrap(s string, width int) string {
	if width < 20 {
		width = 20
	}
	return wordwrap.String(s, width-2)
}

// renderDetail describes one recording and, when it is part of the current
// derivation, its segment metrics.
func renderDetail(item recordingItem, params models.Params, width int) string {
	rec := item.rec
	var b strings.Builder

	b.WriteString(titleStyle.Render(rec.Name))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(wrap(rec.Path, width)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Size:        %s\n", humanize.Bytes(uint64(rec.Size)))
	fmt.Fprintf(&b, "Rows:        %s\n", humanize.Comma(int64(rec.Rows())))
	fmt.Fprintf(&b, "File number: %d\n", cycles.FileNumber(rec.Path))
	b.WriteString(wrap("Columns:     "+strings.Join(rec.Columns, ", "), width))
	b.WriteString("\n")
	if rec.TimeDerived {
		fmt.Fprintf(&b, "Time:        corrected from %q\n", novaexport.ColumnTime)
	}
	if rec.HeaderFallback {
		b.WriteString("Header:      no marker line, first line used\n")
	}
	b.WriteString("\n")

	if !rec.HasPotential() {
		b.WriteString(errorStyle.Render("No potential column. This file is skipped during analysis."))
		b.WriteString("\n")
		return b.String()
	}

	trend := cycles.Trend(rec.Potential)
	fmt.Fprintf(&b, "Trend:       %+.5f V (%s)\n", trend, cycles.ClassifyTrend(trend))

	s := item.segment
	if s == nil {
		b.WriteString(metaStyle.Render("Not selected. Press space in the list to include it."))
		b.WriteString("\n")
		return b.String()
	}

	style := dischargeStyle
	if s.Type == cycles.Charge {
		style = chargeStyle
	}
	b.WriteString("\n")
	b.WriteString(style.Render(fmt.Sprintf("%s, cycle %d", s.Type, s.Cycle)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Capacity:    %.5f mAh\n", s.CapacityMAh)
	fmt.Fprintf(&b, "Energy:      %.5f mWh\n", s.EnergyMWh)
	if params.VolumeL > 0 {
		fmt.Fprintf(&b, "Density:     %.5f Wh/L (%g L)\n", s.EnergyDensityWhL, params.VolumeL)
	}
	fmt.Fprintf(&b, "Voltage:     %.5f V average\n", s.AverageVoltageV)
	if s.CurrentMeasured {
		fmt.Fprintf(&b, "Current:     %.6f A ± %.6f measured\n", s.Current, s.CurrentStdDev)
	} else {
		fmt.Fprintf(&b, "Current:     %g A entered\n", s.Current)
	}
	fmt.Fprintf(&b, "Duration:    %.1f s\n", s.Duration)

	return b.String()
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyBack, KeyQuit:
		m.mode = listView
		return m, nil
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	content := m.viewport.View()
	footer := fmt.Sprintf("\n%3.f%%", m.viewport.ScrollPercent()*100)
	footer += "\n\n" + helpStyle.Render("j/k: scroll | g/G: top/bottom | esc: back")
	return content + footer
}
