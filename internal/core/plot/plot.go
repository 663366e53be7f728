package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/models"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Output file names written by WriteFiles.
const (
	PotentialFile = "potential.png"
	CapacityFile  = "capacity.png"
	EnergyFile    = "energy.png"
)

const (
	defaultWidth  = 1024
	defaultHeight = 420
	maxCycleTicks = 20
)

var (
	chargeColor     = chart.ColorBlue
	dischargeColor  = chart.ColorRed
	efficiencyColor = chart.ColorGreen
)

// Options control what the charts show.
type Options struct {
	Display models.DisplayOptions
	Pairing models.Pairing
	Width   int
	Height  int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// Charts holds the three charts of one derivation result.
type Charts struct {
	Potential chart.Chart
	Capacity  chart.Chart
	Energy    chart.Chart
}

// Build turns a derivation result into charts. It returns ErrNoData when the
// result has no segments.
func Build(res cycles.Result, opts Options) (Charts, error) {
	if len(res.Segments) == 0 {
		return Charts{}, ErrNoData
	}
	return Charts{
		Potential: potentialChart(res.Timeline, opts),
		Capacity:  capacityChart(res.Segments, opts),
		Energy:    energyChart(res.Segments, opts),
	}, nil
}

// Render writes ch to w as PNG.
func Render(w io.Writer, ch chart.Chart) error {
	if len(ch.Series) == 0 {
		return ErrNoData
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %q: %w", ch.Title, err)
	}
	return nil
}

// WriteFiles renders every chart with data into dir and returns the paths written.
func WriteFiles(dir string, res cycles.Result, opts Options) ([]string, error) {
	charts, err := Build(res, opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	var written []string
	for _, out := range []struct {
		name string
		ch   chart.Chart
	}{
		{PotentialFile, charts.Potential},
		{CapacityFile, charts.Capacity},
		{EnergyFile, charts.Energy},
	} {
		if len(out.ch.Series) == 0 {
			continue
		}
		path := filepath.Join(dir, out.name)
		if err := writeFile(path, out.ch); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, ch chart.Chart) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Render(f, ch)
}

func potentialChart(tl cycles.Timeline, opts Options) chart.Chart {
	w, h := opts.size()
	ch := chart.Chart{
		Title:  "Potential",
		Width:  w,
		Height: h,
		XAxis:  chart.XAxis{Name: "Time (s)"},
		YAxis:  chart.YAxis{Name: "Potential (V)"},
	}
	if tl.Len() == 0 {
		return ch
	}

	xMin, xMax := bounds(tl.Time)
	yMin, yMax := bounds(tl.Potential)
	ch.XAxis.Range = padded(xMin, xMax)
	ch.YAxis.Range = padded(yMin, yMax)
	ch.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    "Merged data",
			XValues: tl.Time,
			YValues: tl.Potential,
			Style:   chart.Style{StrokeWidth: 1.5, StrokeColor: chart.ColorBlue},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func capacityChart(segs []cycles.Segment, opts Options) chart.Chart {
	w, h := opts.size()
	maxCycle := segs[len(segs)-1].Cycle

	ch := chart.Chart{
		Title:  "Capacity",
		Width:  w,
		Height: h,
		XAxis:  cycleAxis(maxCycle),
		YAxis: chart.YAxis{
			Name:  "Capacity (mAh)",
			Range: fromZero(segs, func(s cycles.Segment) float64 { return s.CapacityMAh }),
		},
	}
	ch.Series = append(ch.Series, perType(segs, "capacity", func(s cycles.Segment) float64 { return s.CapacityMAh }, chart.YAxisPrimary)...)

	switch opts.Display.Overlay {
	case models.OverlayEfficiency:
		points := cycles.Efficiencies(segs, opts.Pairing)
		if len(points) > 0 {
			xs := make([]float64, len(points))
			ys := make([]float64, len(points))
			top := 100.0
			for i, p := range points {
				xs[i] = float64(p.Cycle)
				ys[i] = p.Percent
				top = math.Max(top, p.Percent)
			}
			ch.YAxisSecondary = chart.YAxis{
				Name:  "Coulombic efficiency (%)",
				Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			}
			ch.Series = append(ch.Series, chart.ContinuousSeries{
				Name:    "Coulombic efficiency",
				XValues: xs,
				YValues: ys,
				Style:   dots(efficiencyColor, 5),
				YAxis:   chart.YAxisSecondary,
			})
		}
	case models.OverlayVoltage:
		voltage := func(s cycles.Segment) float64 { return s.AverageVoltageV }
		vs := make([]float64, len(segs))
		for i, s := range segs {
			vs[i] = s.AverageVoltageV
		}
		lo, hi := bounds(vs)
		ch.YAxisSecondary = chart.YAxis{Name: "Average voltage (V)", Range: padded(lo, hi)}
		for _, s := range perType(segs, "voltage", voltage, chart.YAxisSecondary) {
			cs := s.(chart.ContinuousSeries)
			cs.Style.DotWidth = 3
			cs.Style.StrokeWidth = 1
			cs.Style.StrokeColor = cs.Style.DotColor
			cs.Style.StrokeDashArray = []float64{4, 2}
			ch.Series = append(ch.Series, cs)
		}
	}

	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func energyChart(segs []cycles.Segment, opts Options) chart.Chart {
	w, h := opts.size()
	maxCycle := segs[len(segs)-1].Cycle

	value := func(s cycles.Segment) float64 { return s.EnergyMWh }
	title, axis, label := "Energy", "Energy (mWh)", "energy"
	if opts.Display.ShowEnergyDensity {
		value = func(s cycles.Segment) float64 { return s.EnergyDensityWhL }
		title, axis, label = "Energy density", "Energy density (Wh/L)", "energy density"
	}

	ch := chart.Chart{
		Title:  title,
		Width:  w,
		Height: h,
		XAxis:  cycleAxis(maxCycle),
		YAxis:  chart.YAxis{Name: axis, Range: fromZero(segs, value)},
		Series: perType(segs, label, value, chart.YAxisPrimary),
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

// perType splits segs into a charge and a discharge dot series. Empty series are left out.
func perType(segs []cycles.Segment, label string, value func(cycles.Segment) float64, axis chart.YAxisType) []chart.Series {
	var series []chart.Series
	for _, t := range []struct {
		typ   cycles.CycleType
		color drawing.Color
	}{
		{cycles.Charge, chargeColor},
		{cycles.Discharge, dischargeColor},
	} {
		var xs, ys []float64
		for _, s := range segs {
			if s.Type != t.typ {
				continue
			}
			xs = append(xs, float64(s.Cycle))
			ys = append(ys, value(s))
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s %s", t.typ, label),
			XValues: xs,
			YValues: ys,
			Style:   dots(t.color, 5),
			YAxis:   axis,
		})
	}
	return series
}

func dots(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

// cycleAxis labels whole cycles counting back from maxCycle. go-chart takes the
// x-range from the tick values, so unlabeled ticks mark the padded bounds.
func cycleAxis(maxCycle int) chart.XAxis {
	if maxCycle < 1 {
		maxCycle = 1
	}
	step := 1
	if maxCycle > maxCycleTicks {
		step = int(math.Ceil(float64(maxCycle) / maxCycleTicks))
	}
	var labeled []chart.Tick
	for c := maxCycle; c >= 1; c -= step {
		labeled = append(labeled, chart.Tick{Value: float64(c), Label: fmt.Sprintf("%d", c)})
	}

	lo, hi := 0.5, float64(maxCycle)+0.5
	ticks := []chart.Tick{{Value: lo}}
	for i := len(labeled) - 1; i >= 0; i-- {
		ticks = append(ticks, labeled[i])
	}
	ticks = append(ticks, chart.Tick{Value: hi})

	return chart.XAxis{
		Name:  "Cycle number",
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
		Ticks: ticks,
	}
}

func fromZero(segs []cycles.Segment, value func(cycles.Segment) float64) *chart.ContinuousRange {
	top := 0.0
	for _, s := range segs {
		top = math.Max(top, value(s))
	}
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}

// padded widens [lo, hi] by 5% on each side and never returns a zero-width range.
func padded(lo, hi float64) *chart.ContinuousRange {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	pad := span * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
