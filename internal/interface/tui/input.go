package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) startInput(field inputField) (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = max(20, m.width-20)

	switch field {
	case inputCurrent:
		ti.Prompt = "Current (A): "
		ti.SetValue(strconv.FormatFloat(m.params.CurrentA, 'g', -1, 64))
	case inputVolume:
		ti.Prompt = "Volume (L): "
		ti.SetValue(strconv.FormatFloat(m.params.VolumeL, 'g', -1, 64))
	case inputImport:
		ti.Prompt = "Import file or directory: "
		ti.Placeholder = "~/lab/run-3"
	}

	m.input = ti
	m.editing = field
	m.mode = inputView
	m.err = nil
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyBack:
		m.input.Blur()
		m.mode = listView
		m.editing = inputNone
		return m, nil

	case KeyInputConfirm:
		value := strings.TrimSpace(m.input.Value())
		field := m.editing
		m.input.Blur()
		m.mode = listView
		m.editing = inputNone

		if field == inputImport {
			if value == "" {
				return m, nil
			}
			m.loading = true
			m.status = ""
			return m, importFiles(m.imp, []string{expandHome(value)})
		}
		return m.applyParam(field, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyParam sets a numeric parameter. Invalid input keeps the previous value.
func (m Model) applyParam(field inputField, value string) (tea.Model, tea.Cmd) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		m.err = fmt.Errorf("%q is not a number", value)
		return m, nil
	}

	next := m.params
	switch field {
	case inputCurrent:
		next.CurrentA = v
	case inputVolume:
		next.VolumeL = v
	}
	if err := next.Validate(); err != nil {
		m.err = err
		return m, nil
	}

	m.params = next
	m.err = nil
	m.recompute()
	m.status = fmt.Sprintf("Current %g A, volume %g L", m.params.CurrentA, m.params.VolumeL)
	return m, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
