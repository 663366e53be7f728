package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
)

// Header is the first line of every export, tab separated.
var Header = []string{
	"Cycle number",
	"Charge capacity (mAh)",
	"Discharge capacity (mAh)",
	"Coulombic efficiency (%)",
	"Charge energy (mWh)",
	"Discharge energy (mWh)",
	"Charge voltage (V)",
	"Discharge voltage (V)",
	"Charge energy density (Wh/L)",
	"Discharge energy density (Wh/L)",
}

// Row is one cycle of the export. A side with no segment stays at zero.
type Row struct {
	Cycle int `json:"cycle" yaml:"cycle"`

	ChargeCapacityMAh    float64 `json:"charge_capacity_mah" yaml:"charge_capacity_mah"`
	DischargeCapacityMAh float64 `json:"discharge_capacity_mah" yaml:"discharge_capacity_mah"`
	EfficiencyPercent    float64 `json:"coulombic_efficiency" yaml:"coulombic_efficiency"`

	ChargeEnergyMWh    float64 `json:"charge_energy_mwh" yaml:"charge_energy_mwh"`
	DischargeEnergyMWh float64 `json:"discharge_energy_mwh" yaml:"discharge_energy_mwh"`

	ChargeVoltageV    float64 `json:"charge_voltage_v" yaml:"charge_voltage_v"`
	DischargeVoltageV float64 `json:"discharge_voltage_v" yaml:"discharge_voltage_v"`

	ChargeDensityWhL    float64 `json:"charge_energy_density_whl" yaml:"charge_energy_density_whl"`
	DischargeDensityWhL float64 `json:"discharge_energy_density_whl" yaml:"discharge_energy_density_whl"`
}

// Rows aggregates segments into one row per cycle, ascending. When a cycle has
// several segments of the same type the last one wins.
func Rows(segs []cycles.Segment) []Row {
	byCycle := make(map[int]*Row)
	for _, s := range segs {
		r, ok := byCycle[s.Cycle]
		if !ok {
			r = &Row{Cycle: s.Cycle}
			byCycle[s.Cycle] = r
		}
		switch s.Type {
		case cycles.Charge:
			r.ChargeCapacityMAh = s.CapacityMAh
			r.ChargeEnergyMWh = s.EnergyMWh
			r.ChargeVoltageV = s.AverageVoltageV
			r.ChargeDensityWhL = s.EnergyDensityWhL
		case cycles.Discharge:
			r.DischargeCapacityMAh = s.CapacityMAh
			r.DischargeEnergyMWh = s.EnergyMWh
			r.DischargeVoltageV = s.AverageVoltageV
			r.DischargeDensityWhL = s.EnergyDensityWhL
		}
	}

	rows := make([]Row, 0, len(byCycle))
	for _, r := range byCycle {
		if r.ChargeCapacityMAh > 0 {
			r.EfficiencyPercent = r.DischargeCapacityMAh / r.ChargeCapacityMAh * 100
		}
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Cycle < rows[j].Cycle })
	return rows
}

func (r Row) fields() []string {
	return []string{
		fmt.Sprintf("%d", r.Cycle),
		fmt.Sprintf("%.5f", r.ChargeCapacityMAh),
		fmt.Sprintf("%.5f", r.DischargeCapacityMAh),
		fmt.Sprintf("%.2f", r.EfficiencyPercent),
		fmt.Sprintf("%.5f", r.ChargeEnergyMWh),
		fmt.Sprintf("%.5f", r.DischargeEnergyMWh),
		fmt.Sprintf("%.5f", r.ChargeVoltageV),
		fmt.Sprintf("%.5f", r.DischargeVoltageV),
		fmt.Sprintf("%.5f", r.ChargeDensityWhL),
		fmt.Sprintf("%.5f", r.DischargeDensityWhL),
	}
}

// Format renders the export table as a string.
func Format(segs []cycles.Segment) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, "\t"))
	b.WriteString("\n")
	for _, r := range Rows(segs) {
		b.WriteString(strings.Join(r.fields(), "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

// Write writes the export table to w.
func Write(w io.Writer, segs []cycles.Segment) error {
	if _, err := io.WriteString(w, Format(segs)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
