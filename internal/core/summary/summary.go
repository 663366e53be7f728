package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/export"
	"github.com/neilberkman/cyclerider/internal/core/models"
)

// DefaultTemplate is used when the config does not name one.
const DefaultTemplate = `Current {{current}} A, volume {{volume}} L
{{segment_count}} segments, {{cycles}} cycles, {{total_duration}} of data

{{#segments}}
[{{cycle}}] {{type}} {{{name}}}: {{capacity}} mAh, {{energy}} mWh, avg {{voltage}} V, {{current}} A{{#measured}} measured{{/measured}}, {{duration}}
{{/segments}}
{{#has_rows}}

Cycle  Charge (mAh)  Discharge (mAh)  Efficiency (%)
{{#rows}}
{{cycle}}  {{charge}}  {{discharge}}  {{efficiency}}
{{/rows}}
{{/has_rows}}
{{#has_efficiency}}

Coulombic efficiency ({{pairing}} pairing)
{{#efficiency}}
cycle {{cycle}}: {{percent}} %
{{/efficiency}}
{{/has_efficiency}}
{{#has_skipped}}

Skipped without potential column: {{{skipped}}}
{{/has_skipped}}
`

// Data builds the template context for one derivation result.
func Data(res cycles.Result, params models.Params, pairing models.Pairing) map[string]interface{} {
	var total float64
	segments := make([]map[string]interface{}, len(res.Segments))
	for i, s := range res.Segments {
		total += s.Duration
		segments[i] = map[string]interface{}{
			"cycle":    s.Cycle,
			"type":     string(s.Type),
			"name":     s.Name,
			"capacity": fmt.Sprintf("%.5f", s.CapacityMAh),
			"energy":   fmt.Sprintf("%.5f", s.EnergyMWh),
			"density":  fmt.Sprintf("%.5f", s.EnergyDensityWhL),
			"voltage":  fmt.Sprintf("%.3f", s.AverageVoltageV),
			"current":  humanize.FtoaWithDigits(s.Current, 6),
			"measured": s.CurrentMeasured,
			"duration": Duration(s.Duration),
		}
	}

	rows := export.Rows(res.Segments)
	rowData := make([]map[string]interface{}, len(rows))
	for i, r := range rows {
		rowData[i] = map[string]interface{}{
			"cycle":      r.Cycle,
			"charge":     fmt.Sprintf("%.5f", r.ChargeCapacityMAh),
			"discharge":  fmt.Sprintf("%.5f", r.DischargeCapacityMAh),
			"efficiency": fmt.Sprintf("%.2f", r.EfficiencyPercent),
		}
	}

	points := cycles.Efficiencies(res.Segments, pairing)
	effData := make([]map[string]interface{}, len(points))
	for i, p := range points {
		effData[i] = map[string]interface{}{
			"cycle":   p.Cycle,
			"percent": fmt.Sprintf("%.2f", p.Percent),
		}
	}

	return map[string]interface{}{
		"current":        humanize.FtoaWithDigits(params.CurrentA, 6),
		"volume":         humanize.FtoaWithDigits(params.VolumeL, 6),
		"segment_count":  humanize.Comma(int64(len(res.Segments))),
		"cycles":         res.Cycles(),
		"total_duration": Duration(total),
		"segments":       segments,
		"rows":           rowData,
		"has_rows":       len(rowData) > 0,
		"efficiency":     effData,
		"has_efficiency": len(effData) > 0,
		"pairing":        string(pairing),
		"skipped":        strings.Join(res.Skipped, ", "),
		"has_skipped":    len(res.Skipped) > 0,
	}
}

// Render fills tmpl (DefaultTemplate when empty) with the result.
func Render(tmpl string, res cycles.Result, params models.Params, pairing models.Pairing) (string, error) {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	out, err := mustache.Render(tmpl, Data(res, params, pairing))
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}

// Duration formats seconds as "3 minutes", "2 hours" and so on.
func Duration(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%.1f seconds", seconds)
	}
	d := time.Duration(seconds * float64(time.Second))
	var epoch time.Time
	return strings.TrimSpace(humanize.RelTime(epoch, epoch.Add(d), "", ""))
}
