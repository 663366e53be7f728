package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cyclerider/internal/core/config"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/logging"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

func rec(name string, potential ...float64) *novaexport.Recording {
	t := make([]float64, len(potential))
	for i := range t {
		t[i] = float64(i * 10)
	}
	return &novaexport.Recording{Path: "/lab/" + name, Name: name, CorrectedTime: t, Potential: potential}
}

func newModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	cfg.ExportPath = filepath.Join(t.TempDir(), "cycles.txt")
	cfg.PlotDir = t.TempDir()
	return New(importer.New(novaexport.Options{}, logging.Discard()), cfg, nil)
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := newModel(t)
	updated, cmd := m.Update(recordingsLoadedMsg{batch: importer.Batch{
		Recordings: []*novaexport.Recording{
			rec("discharge (1).txt", 3.6, 3.3, 3.0),
			rec("charge (1).txt", 3.0, 3.3, 3.6),
		},
	}})
	assert.Nil(t, cmd)
	return updated.(Model)
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(key)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	m := newModel(t)
	assert.Equal(t, listView, m.mode)
	assert.Equal(t, models.DefaultParams(), m.params)
	assert.Empty(t, m.result.Segments)
	assert.Nil(t, m.Init(), "nothing to import without args")
	assert.Contains(t, m.View(), "No files loaded")
}

func TestRecordingsLoaded(t *testing.T) {
	m := loaded(t)

	assert.Equal(t, 2, m.sess.Len())
	require.Len(t, m.result.Segments, 2)
	assert.Equal(t, "charge (1).txt", m.result.Segments[0].Name, "charge first by default")
	assert.Equal(t, "2 files imported", m.status)
	assert.Len(t, m.list.Items(), 2)
}

func TestRecordingsLoaded_WithFailures(t *testing.T) {
	m := newModel(t)
	updated, _ := m.Update(recordingsLoadedMsg{batch: importer.Batch{
		Recordings: []*novaexport.Recording{rec("charge (1).txt", 3.0, 3.6)},
		Failures:   []importer.Failure{{Path: "/lab/broken.txt", Err: novaexport.ErrNoHeaderFound}},
	}})
	model := updated.(Model)

	assert.Contains(t, model.status, "1 file imported, 1 file skipped")
	assert.Contains(t, model.status, "/lab/broken.txt")
}

func TestToggleSelection(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, runes(" "))
	require.Len(t, m.result.Segments, 1)
	assert.Equal(t, "discharge (1).txt", m.result.Segments[0].Name)
	assert.Equal(t, 1, m.result.Segments[0].Cycle)

	item, ok := m.list.Items()[0].(recordingItem)
	require.True(t, ok)
	assert.False(t, item.selected)
	assert.Nil(t, item.segment)

	m, _ = press(t, m, runes("a"))
	assert.Len(t, m.result.Segments, 2, "select all when some are excluded")

	m, _ = press(t, m, runes("a"))
	assert.Empty(t, m.result.Segments, "select none when all are included")
}

func TestChargeFirstToggle(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, runes("c"))
	assert.False(t, m.sess.ChargeFirst())
	require.Len(t, m.result.Segments, 2)
	assert.Equal(t, "discharge (1).txt", m.result.Segments[0].Name)
	assert.Equal(t, "Charge first: off", m.status)
}

func TestDisplayToggles(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, runes("e"))
	assert.Equal(t, models.OverlayEfficiency, m.display.Overlay)
	assert.Contains(t, m.View(), "CE (%)")

	m, _ = press(t, m, runes("v"))
	assert.Equal(t, models.OverlayVoltage, m.display.Overlay, "voltage replaces efficiency")

	m, _ = press(t, m, runes("v"))
	assert.Equal(t, models.OverlayNone, m.display.Overlay)

	m, _ = press(t, m, runes("d"))
	assert.True(t, m.display.ShowEnergyDensity)
	assert.Contains(t, m.View(), "Density (Wh/L)")

	m, _ = press(t, m, runes("b"))
	assert.Equal(t, models.PairingByCycle, m.pairing)
}

func TestEditCurrent(t *testing.T) {
	m := loaded(t)
	before := m.result.Segments[0].CapacityMAh

	m, _ = press(t, m, runes("i"))
	require.Equal(t, inputView, m.mode)
	assert.Equal(t, "0.02", m.input.Value())

	m.input.SetValue("0.04")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, listView, m.mode)
	assert.NoError(t, m.err)
	assert.Equal(t, 0.04, m.params.CurrentA)
	assert.InDelta(t, before*2, m.result.Segments[0].CapacityMAh, 1e-12)
}

func TestEditCurrent_Invalid(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, runes("i"))
	m.input.SetValue("fast")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Error(t, m.err)
	assert.Equal(t, models.DefaultCurrentA, m.params.CurrentA, "previous value kept")
	assert.Contains(t, m.View(), "Error:")

	m, _ = press(t, m, runes("l"))
	m.input.SetValue("NaN")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Error(t, m.err)
	assert.Equal(t, models.DefaultVolumeL, m.params.VolumeL)
}

func TestEditCancel(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, runes("l"))
	m.input.SetValue("1")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, listView, m.mode)
	assert.Equal(t, models.DefaultVolumeL, m.params.VolumeL)
}

func TestImportPrompt(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, runes("o"))
	require.Equal(t, inputView, m.mode)
	m.input.SetValue(filepath.Join(t.TempDir(), "missing.txt"))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	assert.False(t, m.loading)
	assert.Equal(t, 0, m.sess.Len(), "import replaces the previous files")
	assert.Contains(t, m.status, "1 file skipped")
}

func TestExport(t *testing.T) {
	m := loaded(t)

	m, cmd := press(t, m, runes("x"))
	require.NotNil(t, cmd)
	msg := cmd()
	written, ok := msg.(exportWrittenMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, 1, written.cycles)

	data, err := os.ReadFile(m.cfg.ExportPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Cycle number\t"))
	assert.True(t, strings.HasPrefix(lines[1], "1\t"))

	updated, _ := m.Update(msg)
	assert.Equal(t, "1 cycle exported to "+m.cfg.ExportPath, updated.(Model).status)
}

func TestExport_NothingSelected(t *testing.T) {
	m := loaded(t)
	m, _ = press(t, m, runes("a")) // all selected, so this deselects

	m, cmd := press(t, m, runes("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing selected to export", m.status)
	_, err := os.Stat(m.cfg.ExportPath)
	assert.True(t, os.IsNotExist(err))
}

func TestPlots(t *testing.T) {
	m := loaded(t)

	m, cmd := press(t, m, runes("p"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(plotsWrittenMsg)
	require.True(t, ok)
	assert.NotEmpty(t, msg.paths)

	updated, _ := m.Update(msg)
	assert.Contains(t, updated.(Model).status, "written to "+m.cfg.PlotDir)
}

func TestDetailAndHelp(t *testing.T) {
	m := loaded(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, detailView, m.mode)
	assert.Contains(t, m.viewport.View(), "charge (1).txt")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, listView, m.mode)

	m, _ = press(t, m, runes("?"))
	require.Equal(t, helpView, m.mode)
	assert.Contains(t, m.View(), "Toggle charge first")
	assert.Contains(t, m.View(), "Edit sample volume (L)")

	m, _ = press(t, m, runes("j"))
	assert.Equal(t, listView, m.mode)
}

func TestErrMsg(t *testing.T) {
	m := loaded(t)
	updated, _ := m.Update(errMsg{errors.New("disk full")})
	model := updated.(Model)

	assert.EqualError(t, model.err, "disk full")
	assert.Contains(t, model.View(), "disk full")
}

func TestQuit(t *testing.T) {
	m := loaded(t)

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
