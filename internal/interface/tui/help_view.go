package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit
	}

	// Any other key returns to the list
	m.mode = listView
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
Cycling Analyzer - Help
═══════════════════════

FILE LIST
─────────
  ↑/↓, j/k     Navigate files
  space        Include or exclude the file
  a            Include all / none
  Enter        File details and segment metrics
  o            Import a file or directory (replaces the current files)

PARAMETERS
──────────
  i            Edit current (A)
  l            Edit sample volume (L)
  c            Toggle charge first / discharge first
  b            Toggle efficiency pairing (adjacent / by cycle)

DISPLAY
───────
  e            Toggle coulombic efficiency overlay
  v            Toggle average voltage overlay
  d            Toggle energy / energy density

OUTPUT
──────
  x            Write cycle table to the export path
  y            Copy cycle table to clipboard
  p            Write charts to the plot directory

DETAIL VIEW
───────────
  j/k          Scroll line by line
  g/G          Jump to top/bottom
  esc          Back to file list

  ?            Show this help
  q            Quit

Press any key to return to the file list
`

	return helpStyle.Render(help)
}
