package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/export"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/internal/core/plot"
	"github.com/neilberkman/cyclerider/internal/core/session"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

const maxPanelRows = 8

type recordingItem struct {
	rec      *novaexport.Recording
	selected bool
	segment  *cycles.Segment // nil when not selected or skipped
}

func (i recordingItem) FilterValue() string {
	return i.rec.Name
}

func (i recordingItem) Title() string {
	box := "[ ]"
	if i.selected {
		box = "[x]"
	}
	return box + " " + i.rec.Name
}

func (i recordingItem) Description() string {
	if !i.rec.HasPotential() {
		return "no potential column, skipped"
	}
	if i.segment == nil {
		return fmt.Sprintf("%s rows | looks like %s", humanize.Comma(int64(i.rec.Rows())),
			strings.ToLower(string(cycles.ClassifyTrend(cycles.Trend(i.rec.Potential)))))
	}
	s := i.segment
	desc := fmt.Sprintf("cycle %d | %.5f mAh | %.5f mWh | avg %.3f V", s.Cycle, s.CapacityMAh, s.EnergyMWh, s.AverageVoltageV)
	if s.CurrentMeasured {
		desc += " | measured current"
	}
	return desc
}

// Custom delegate to color charge and discharge segments
type recordingDelegate struct {
	list.DefaultDelegate
}

func (d recordingDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(recordingItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := r.Title()
	desc := r.Description()
	if r.segment != nil {
		label := string(r.segment.Type)
		if r.segment.Type == cycles.Charge {
			label = chargeStyle.Render(label)
		} else {
			label = dischargeStyle.Render(label)
		}
		desc = label + " | " + desc
	}

	switch {
	case index == m.Index():
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	case !r.selected:
		title = excludedItemStyle.Render(title)
		desc = excludedItemStyle.Render(desc)
	default:
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func toListItems(items []recordingItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func createRecordingList(items []recordingItem, width, height int) list.Model {
	delegate := recordingDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(toListItems(items), delegate, width, height)
	l.Title = ""                 // No title
	l.SetShowStatusBar(false)    // No status bar
	l.SetShowHelp(false)         // No built-in help
	l.SetShowTitle(false)        // No title rendering
	l.SetFilteringEnabled(false) // Keys are used for toggles

	return l
}

func (m Model) currentItem() (recordingItem, bool) {
	item, ok := m.list.SelectedItem().(recordingItem)
	return item, ok
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeyHelp:
		m.mode = helpView
		return m, nil

	case KeyToggle:
		if item, ok := m.currentItem(); ok {
			m.sess.Toggle(session.Key(item.rec))
			m.recompute()
		}
		return m, nil

	case KeyToggleAll:
		if len(m.sess.Selected()) == m.sess.Len() {
			m.sess.SelectNone()
		} else {
			m.sess.SelectAll()
		}
		m.recompute()
		return m, nil

	case KeyChargeFirst:
		m.sess.SetChargeFirst(!m.sess.ChargeFirst())
		m.recompute()
		m.status = "Charge first: " + onOff(m.sess.ChargeFirst())
		return m, nil

	case KeyEfficiency:
		m.display.Overlay = m.display.Overlay.Toggle(models.OverlayEfficiency)
		m.recompute()
		m.status = "Overlay: " + string(m.display.Overlay)
		return m, nil

	case KeyVoltage:
		m.display.Overlay = m.display.Overlay.Toggle(models.OverlayVoltage)
		m.recompute()
		m.status = "Overlay: " + string(m.display.Overlay)
		return m, nil

	case KeyDensity:
		m.display.ShowEnergyDensity = !m.display.ShowEnergyDensity
		m.recompute()
		m.status = "Energy density: " + onOff(m.display.ShowEnergyDensity)
		return m, nil

	case KeyPairing:
		if m.pairing == models.PairingAdjacent {
			m.pairing = models.PairingByCycle
		} else {
			m.pairing = models.PairingAdjacent
		}
		m.recompute()
		m.status = "Efficiency pairing: " + string(m.pairing)
		return m, nil

	case KeyEditCurrent:
		return m.startInput(inputCurrent)

	case KeyEditVolume:
		return m.startInput(inputVolume)

	case KeyImport:
		return m.startInput(inputImport)

	case KeyExport:
		if len(m.result.Segments) == 0 {
			m.status = "Nothing selected to export"
			return m, nil
		}
		return m, writeExport(m.cfg.ExportPath, m.result.Segments)

	case KeyClipboard:
		if len(m.result.Segments) == 0 {
			m.status = "Nothing selected to copy"
			return m, nil
		}
		return m, copyExport(m.result.Segments)

	case KeyPlots:
		if len(m.result.Segments) == 0 {
			m.status = "Nothing selected to plot"
			return m, nil
		}
		dir := m.cfg.PlotDir
		if dir == "" {
			dir = "."
		}
		return m, writePlots(dir, m.result, plot.Options{Display: m.display, Pairing: m.pairing})

	case KeyDetail:
		if item, ok := m.currentItem(); ok {
			m.viewport.SetContent(renderDetail(item, m.params, m.width))
			m.viewport.GotoTop()
			m.mode = detailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cyclerider"))
	b.WriteString(metaStyle.Render(fmt.Sprintf("  current %g A | volume %g L | charge first %s | overlay %s | %s",
		m.params.CurrentA, m.params.VolumeL, onOff(m.sess.ChargeFirst()), m.display.Overlay, m.energyLabel())))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString("Importing...\n")
	case m.sess.Len() == 0:
		b.WriteString("No files loaded. Press 'o' to import a file or directory.\n")
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n")
		b.WriteString(m.viewPanel())
		b.WriteString("\n")
	}

	if m.mode == inputView {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space select • a all • c charge first • e/v overlay • d density • i/l edit • x export • p plots • ? more • q quit"))
	return b.String()
}

func (m Model) energyLabel() string {
	if m.display.ShowEnergyDensity {
		return "energy density"
	}
	return "energy"
}

// viewPanel renders the per-cycle table for the current selection.
func (m Model) viewPanel() string {
	rows := export.Rows(m.result.Segments)
	if len(rows) == 0 {
		return panelStyle.Render(metaStyle.Render("Select files to derive cycles"))
	}

	efficiency := map[int]float64{}
	for _, p := range cycles.Efficiencies(m.result.Segments, m.pairing) {
		efficiency[p.Cycle] = p.Percent
	}

	energyHeader := "Energy (mWh)"
	if m.display.ShowEnergyDensity {
		energyHeader = "Density (Wh/L)"
	}
	header := fmt.Sprintf("%-6s %14s %14s %16s %16s", "Cycle", "Charge (mAh)", "Disch. (mAh)", "Chg "+energyHeader, "Dis "+energyHeader)
	switch m.display.Overlay {
	case models.OverlayEfficiency:
		header += fmt.Sprintf(" %8s", "CE (%)")
	case models.OverlayVoltage:
		header += fmt.Sprintf(" %8s %8s", "Chg V", "Dis V")
	}

	lines := []string{header}
	start := max(0, len(rows)-maxPanelRows)
	for _, r := range rows[start:] {
		chg, dis := r.ChargeEnergyMWh, r.DischargeEnergyMWh
		if m.display.ShowEnergyDensity {
			chg, dis = r.ChargeDensityWhL, r.DischargeDensityWhL
		}
		line := fmt.Sprintf("%-6d %14.5f %14.5f %16.5f %16.5f", r.Cycle, r.ChargeCapacityMAh, r.DischargeCapacityMAh, chg, dis)
		switch m.display.Overlay {
		case models.OverlayEfficiency:
			if p, ok := efficiency[r.Cycle]; ok {
				line += efficiencyStyle.Render(fmt.Sprintf(" %8.2f", p))
			} else {
				line += fmt.Sprintf(" %8s", "-")
			}
		case models.OverlayVoltage:
			line += fmt.Sprintf(" %8.3f %8.3f", r.ChargeVoltageV, r.DischargeVoltageV)
		}
		lines = append(lines, line)
	}
	if start > 0 {
		lines = append(lines, metaStyle.Render(fmt.Sprintf("... %d earlier cycles", start)))
	}
	if len(m.result.Skipped) > 0 {
		lines = append(lines, metaStyle.Render("Skipped without potential: "+strings.Join(m.result.Skipped, ", ")))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// panelHeight is the number of lines viewPanel takes.
func (m Model) panelHeight() int {
	rows := len(export.Rows(m.result.Segments))
	lines := min(rows, maxPanelRows) + 1
	if rows > maxPanelRows {
		lines++
	}
	if len(m.result.Skipped) > 0 {
		lines++
	}
	return lines + 2 // border
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render(wrap("Error: "+m.err.Error(), m.width))
	}
	return statusStyle.Render(m.status)
}

func importStatus(batch importer.Batch) string {
	status := pluralize(len(batch.Recordings), "file") + " imported"
	if len(batch.Failures) == 0 {
		return status
	}
	status += ", " + pluralize(len(batch.Failures), "file") + " skipped"
	for _, f := range batch.Failures {
		status += "\n  " + f.Title() + ": " + f.Path
	}
	return status
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
