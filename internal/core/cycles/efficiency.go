package cycles

import (
	"sort"

	"github.com/neilberkman/cyclerider/internal/core/models"
)

// EfficiencyPoint is the Coulombic efficiency of one cycle.
type EfficiencyPoint struct {
	Cycle   int     `json:"cycle" yaml:"cycle"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Efficiencies pairs charge and discharge segments and returns
// discharge/charge*100 per pair. Pairs whose charge capacity is 0 are omitted.
func Efficiencies(segs []Segment, pairing models.Pairing) []EfficiencyPoint {
	if pairing == models.PairingByCycle {
		return efficienciesByCycle(segs)
	}
	return efficienciesAdjacent(segs)
}

// efficienciesAdjacent only pairs a Charge immediately followed by a Discharge
// of the same cycle. Anything else advances by one and tries again, so gaps in
// the selection change the result.
func efficienciesAdjacent(segs []Segment) []EfficiencyPoint {
	points := []EfficiencyPoint{}
	i := 0
	for i < len(segs)-1 {
		a, b := segs[i], segs[i+1]
		if a.Type == Charge && b.Type == Discharge && a.Cycle == b.Cycle {
			if a.CapacityMAh != 0 {
				points = append(points, EfficiencyPoint{
					Cycle:   a.Cycle,
					Percent: b.CapacityMAh / a.CapacityMAh * 100,
				})
			}
			i += 2
			continue
		}
		i++
	}
	return points
}

func efficienciesByCycle(segs []Segment) []EfficiencyPoint {
	type pair struct {
		charge, discharge       float64
		hasCharge, hasDischarge bool
	}

	groups := make(map[int]*pair)
	for _, s := range segs {
		p, ok := groups[s.Cycle]
		if !ok {
			p = &pair{}
			groups[s.Cycle] = p
		}
		if s.Type == Charge {
			p.charge, p.hasCharge = s.CapacityMAh, true
		} else {
			p.discharge, p.hasDischarge = s.CapacityMAh, true
		}
	}

	numbers := make([]int, 0, len(groups))
	for n := range groups {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	points := []EfficiencyPoint{}
	for _, n := range numbers {
		p := groups[n]
		if p.hasCharge && p.hasDischarge && p.charge != 0 {
			points = append(points, EfficiencyPoint{Cycle: n, Percent: p.discharge / p.charge * 100})
		}
	}
	return points
}
