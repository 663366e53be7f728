package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleResult() cycles.Result {
	return cycles.Result{
		Segments: []cycles.Segment{
			{Name: "charge (1).txt", Type: cycles.Charge, Cycle: 1, CapacityMAh: 10, EnergyMWh: 34, EnergyDensityWhL: 1.7, AverageVoltageV: 3.4},
			{Name: "discharge (1).txt", Type: cycles.Discharge, Cycle: 1, CapacityMAh: 9, EnergyMWh: 29, EnergyDensityWhL: 1.45, AverageVoltageV: 3.2},
			{Name: "charge (2).txt", Type: cycles.Charge, Cycle: 2, CapacityMAh: 10, EnergyMWh: 34, EnergyDensityWhL: 1.7, AverageVoltageV: 3.4},
		},
		Timeline: cycles.Timeline{
			Time:      []float64{0, 10, 20, 30, 40},
			Potential: []float64{3.0, 3.6, 3.0, 3.3, 3.6},
		},
	}
}

func seriesNames(ch chart.Chart) []string {
	var names []string
	for _, s := range ch.Series {
		names = append(names, s.GetName())
	}
	return names
}

// tickSpan is the x-range go-chart derives from the axis ticks.
func tickSpan(axis chart.XAxis) (lo, hi float64) {
	lo, hi = axis.Ticks[0].Value, axis.Ticks[0].Value
	for _, tick := range axis.Ticks {
		lo = min(lo, tick.Value)
		hi = max(hi, tick.Value)
	}
	return lo, hi
}

func labels(axis chart.XAxis) []string {
	var out []string
	for _, tick := range axis.Ticks {
		if tick.Label != "" {
			out = append(out, tick.Label)
		}
	}
	return out
}

func TestBuild_NoData(t *testing.T) {
	_, err := Build(cycles.Result{}, Options{})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = WriteFiles(t.TempDir(), cycles.Result{}, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuild_Defaults(t *testing.T) {
	charts, err := Build(sampleResult(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Merged data"}, seriesNames(charts.Potential))
	assert.Equal(t, []string{"Charge capacity", "Discharge capacity"}, seriesNames(charts.Capacity))
	assert.Equal(t, []string{"Charge energy", "Discharge energy"}, seriesNames(charts.Energy))
	assert.Equal(t, "Energy (mWh)", charts.Energy.YAxis.Name)

	assert.Equal(t, defaultWidth, charts.Capacity.Width)
	require.NotNil(t, charts.Capacity.YAxis.Range)
	assert.Equal(t, 0.0, charts.Capacity.YAxis.Range.GetMin())
	lo, hi := tickSpan(charts.Capacity.XAxis)
	assert.Equal(t, 0.5, lo)
	assert.Equal(t, 2.5, hi)
	assert.Equal(t, []string{"1", "2"}, labels(charts.Capacity.XAxis))
}

func TestBuild_EfficiencyOverlay(t *testing.T) {
	opts := Options{Display: models.DisplayOptions{Overlay: models.OverlayEfficiency}}
	charts, err := Build(sampleResult(), opts)
	require.NoError(t, err)

	require.Len(t, charts.Capacity.Series, 3)
	eff := charts.Capacity.Series[2].(chart.ContinuousSeries)
	assert.Equal(t, "Coulombic efficiency", eff.Name)
	assert.Equal(t, chart.YAxisSecondary, eff.YAxis)
	assert.Equal(t, []float64{1}, eff.XValues)
	assert.InDelta(t, 90.0, eff.YValues[0], 1e-9)
}

func TestBuild_VoltageOverlay(t *testing.T) {
	opts := Options{Display: models.DisplayOptions{Overlay: models.OverlayVoltage}}
	charts, err := Build(sampleResult(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Charge capacity", "Discharge capacity",
		"Charge voltage", "Discharge voltage",
	}, seriesNames(charts.Capacity))
	assert.Equal(t, "Average voltage (V)", charts.Capacity.YAxisSecondary.Name)
}

func TestBuild_EnergyDensity(t *testing.T) {
	opts := Options{Display: models.DisplayOptions{ShowEnergyDensity: true}}
	charts, err := Build(sampleResult(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Energy density (Wh/L)", charts.Energy.YAxis.Name)
	first := charts.Energy.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, []float64{1.7, 1.7}, first.YValues)
}

func TestBuild_ManyCyclesThinsTicks(t *testing.T) {
	var segs []cycles.Segment
	for c := 1; c <= 100; c++ {
		segs = append(segs, cycles.Segment{Type: cycles.Charge, Cycle: c, CapacityMAh: 1})
	}
	charts, err := Build(cycles.Result{Segments: segs}, Options{})
	require.NoError(t, err)

	labeled := labels(charts.Capacity.XAxis)
	assert.LessOrEqual(t, len(labeled), maxCycleTicks)
	assert.Equal(t, "100", labeled[len(labeled)-1])
	assert.Empty(t, charts.Potential.Series)
}

func TestBuild_ThinnedTicksKeepLastCycle(t *testing.T) {
	var segs []cycles.Segment
	for c := 1; c <= 26; c++ {
		segs = append(segs, cycles.Segment{Type: cycles.Discharge, Cycle: c, CapacityMAh: 1, EnergyMWh: 3})
	}
	charts, err := Build(cycles.Result{Segments: segs}, Options{Width: 400, Height: 300})
	require.NoError(t, err)

	for _, ch := range []chart.Chart{charts.Capacity, charts.Energy} {
		lo, hi := tickSpan(ch.XAxis)
		assert.Equal(t, 0.5, lo, ch.Title)
		assert.Equal(t, 26.5, hi, ch.Title)
		assert.Contains(t, labels(ch.XAxis), "26", ch.Title)
	}
}

func TestRender_SingleCycle(t *testing.T) {
	for name, segs := range map[string][]cycles.Segment{
		"one segment": {
			{Type: cycles.Charge, Cycle: 1, CapacityMAh: 10, EnergyMWh: 34},
		},
		"charge and discharge": {
			{Type: cycles.Charge, Cycle: 1, CapacityMAh: 10, EnergyMWh: 34, AverageVoltageV: 3.4},
			{Type: cycles.Discharge, Cycle: 1, CapacityMAh: 9, EnergyMWh: 29, AverageVoltageV: 3.2},
		},
		"two discharges": {
			{Type: cycles.Discharge, Cycle: 1, CapacityMAh: 9, EnergyMWh: 29},
			{Type: cycles.Discharge, Cycle: 1, CapacityMAh: 8, EnergyMWh: 27},
		},
	} {
		t.Run(name, func(t *testing.T) {
			for _, overlay := range []models.Overlay{models.OverlayNone, models.OverlayEfficiency, models.OverlayVoltage} {
				charts, err := Build(cycles.Result{Segments: segs}, Options{
					Display: models.DisplayOptions{Overlay: overlay},
					Width:   400,
					Height:  300,
				})
				require.NoError(t, err)

				for _, ch := range []chart.Chart{charts.Capacity, charts.Energy} {
					var buf bytes.Buffer
					require.NoError(t, Render(&buf, ch), "%s %s", ch.Title, overlay)
					assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	charts, err := Build(sampleResult(), Options{
		Display: models.DisplayOptions{Overlay: models.OverlayEfficiency},
		Width:   400,
		Height:  300,
	})
	require.NoError(t, err)

	for _, ch := range []chart.Chart{charts.Potential, charts.Capacity, charts.Energy} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, ch), ch.Title)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), ch.Title)
	}

	assert.ErrorIs(t, Render(&bytes.Buffer{}, chart.Chart{}), ErrNoData)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")

	written, err := WriteFiles(dir, sampleResult(), Options{Width: 400, Height: 300})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, PotentialFile),
		filepath.Join(dir, CapacityFile),
		filepath.Join(dir, EnergyFile),
	}, written)
	for _, path := range written {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), path)
	}
}

func TestPadded(t *testing.T) {
	r := padded(3, 3)
	assert.Less(t, r.Min, 3.0)
	assert.Greater(t, r.Max, 3.0)

	r = padded(0, 10)
	assert.InDelta(t, -0.5, r.Min, 1e-12)
	assert.InDelta(t, 10.5, r.Max, 1e-12)
}
