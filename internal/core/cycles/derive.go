package cycles

import (
	"math"

	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

// CycleType labels a recording as one half of a cycle.
type CycleType string

const (
	Charge    CycleType = "Charge"
	Discharge CycleType = "Discharge"
)

// ClassifyTrend returns Charge for a strictly rising potential, Discharge otherwise.
func ClassifyTrend(trend float64) CycleType {
	if trend > 0 {
		return Charge
	}
	return Discharge
}

// Segment is one recording with its per-cycle metrics.
type Segment struct {
	Name  string    `json:"name" yaml:"name"`
	Path  string    `json:"path" yaml:"path"`
	Type  CycleType `json:"type" yaml:"type"`
	Cycle int       `json:"cycle" yaml:"cycle"`

	CapacityMAh      float64 `json:"capacity_mah" yaml:"capacity_mah"`
	EnergyMWh        float64 `json:"energy_mwh" yaml:"energy_mwh"`
	EnergyDensityWhL float64 `json:"energy_density_whl" yaml:"energy_density_whl"`
	AverageVoltageV  float64 `json:"average_voltage_v" yaml:"average_voltage_v"`

	// Current is the mean of the recording's current column when it has one
	// (CurrentMeasured), otherwise the entered current.
	Current         float64 `json:"current_a" yaml:"current_a"`
	CurrentStdDev   float64 `json:"current_std_a" yaml:"current_std_a"`
	CurrentMeasured bool    `json:"current_measured" yaml:"current_measured"`

	Trend    float64 `json:"trend_v" yaml:"trend_v"`
	Duration float64 `json:"duration_s" yaml:"duration_s"` // max corrected time
}

// Timeline is the potential of all processed recordings on one continuous time axis.
type Timeline struct {
	Time      []float64 `json:"time_s" yaml:"time_s"`
	Potential []float64 `json:"potential_v" yaml:"potential_v"`
}

func (t Timeline) Len() int {
	return len(t.Time)
}

// Result is everything one derivation run produces.
type Result struct {
	Segments []Segment `json:"segments" yaml:"segments"`
	Timeline Timeline  `json:"-" yaml:"-"`
	// Skipped lists recordings left out because they have no potential column.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Cycles returns the highest cycle number, 0 for an empty result.
func (r Result) Cycles() int {
	if len(r.Segments) == 0 {
		return 0
	}
	return r.Segments[len(r.Segments)-1].Cycle
}

// Derive computes per-segment metrics and the stitched timeline for recs, in
// the order given. Callers choose the order (see Sort).
func Derive(recs []*novaexport.Recording, params models.Params) Result {
	res := Result{
		Segments: []Segment{},
		Timeline: Timeline{Time: []float64{}, Potential: []float64{}},
	}

	var offset float64
	cycle := 1
	var lastType CycleType

	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if !rec.HasPotential() {
			res.Skipped = append(res.Skipped, rec.Name)
			continue
		}

		appendTimeline(&res.Timeline, rec, offset)
		offset += lastFinite(rec.CorrectedTime)

		seg := measure(rec, params)

		if lastType == Discharge && seg.Type == Charge {
			cycle++
		}
		lastType = seg.Type
		seg.Cycle = cycle

		res.Segments = append(res.Segments, seg)
	}

	return res
}

func measure(rec *novaexport.Recording, params models.Params) Segment {
	current, std, measured := segmentCurrent(rec, params.CurrentA)
	duration := maxFinite(rec.CorrectedTime)

	power := make([]float64, len(rec.Potential))
	for i, v := range rec.Potential {
		power[i] = v * current
	}
	energyMWh := math.Abs(trapezoid(power, rec.CorrectedTime)) / 3.6

	var density float64
	if params.VolumeL > 0 {
		density = energyMWh / (1000 * params.VolumeL)
	}

	trend := Trend(rec.Potential)
	avg := mean(rec.Potential)
	if !finite(avg) {
		avg = 0
	}

	return Segment{
		Name:             rec.Name,
		Path:             rec.Path,
		Type:             ClassifyTrend(trend),
		CapacityMAh:      duration * math.Abs(current) * 1000 / 3600,
		EnergyMWh:        energyMWh,
		EnergyDensityWhL: density,
		AverageVoltageV:  avg,
		Current:          current,
		CurrentStdDev:    std,
		CurrentMeasured:  measured,
		Trend:            trend,
		Duration:         duration,
	}
}

// segmentCurrent prefers the recording's own current column over the entered value.
// A column without any usable value counts as absent.
func segmentCurrent(rec *novaexport.Recording, entered float64) (current, std float64, measured bool) {
	if rec.HasCurrent() {
		if m := mean(rec.Current); finite(m) {
			return m, stdDev(rec.Current), true
		}
	}
	return entered, 0, false
}

func appendTimeline(tl *Timeline, rec *novaexport.Recording, offset float64) {
	for i, t := range rec.CorrectedTime {
		if i >= len(rec.Potential) {
			break
		}
		v := rec.Potential[i]
		if !finite(t) || !finite(v) {
			continue
		}
		tl.Time = append(tl.Time, t+offset)
		tl.Potential = append(tl.Potential, v)
	}
}
