package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default parameter values used when neither config nor flags set them.
const (
	DefaultCurrentA = 0.02
	DefaultVolumeL  = 0.02
)

// Params are the operator-entered inputs to a derivation run.
type Params struct {
	CurrentA float64 // applied to recordings that carry no current column
	VolumeL  float64 // sample volume; <= 0 disables energy density
}

// DefaultParams returns the parameters a fresh session starts with.
func DefaultParams() Params {
	return Params{CurrentA: DefaultCurrentA, VolumeL: DefaultVolumeL}
}

// Validate checks that both parameters are usable numbers
func (p Params) Validate() error {
	if math.IsNaN(p.CurrentA) || math.IsInf(p.CurrentA, 0) {
		return errors.New("current must be a finite number")
	}
	if math.IsNaN(p.VolumeL) || math.IsInf(p.VolumeL, 0) {
		return errors.New("volume must be a finite number")
	}
	return nil
}

// Overlay selects what is drawn on the secondary axis of the capacity chart.
// Efficiency and average voltage are mutually exclusive.
type Overlay string

const (
	OverlayNone       Overlay = "none"
	OverlayEfficiency Overlay = "efficiency"
	OverlayVoltage    Overlay = "voltage"
)

// ParseOverlay accepts the config/flag spelling of an overlay.
func ParseOverlay(s string) (Overlay, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return OverlayNone, nil
	case "efficiency", "coulombic":
		return OverlayEfficiency, nil
	case "voltage", "average-voltage":
		return OverlayVoltage, nil
	}
	return OverlayNone, fmt.Errorf("unknown overlay %q (want none, efficiency or voltage)", s)
}

// Toggle switches to o, or back to none when o is already active.
func (cur Overlay) Toggle(o Overlay) Overlay {
	if cur == o {
		return OverlayNone
	}
	return o
}

// Pairing selects how charge and discharge segments are matched for efficiency.
type Pairing string

const (
	// PairingAdjacent pairs neighbouring segments in processing order. It is
	// sensitive to order and gaps in the selection.
	PairingAdjacent Pairing = "adjacent"
	// PairingByCycle pairs the charge and discharge that share a cycle number.
	PairingByCycle Pairing = "by-cycle"
)

func ParsePairing(s string) (Pairing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "adjacent":
		return PairingAdjacent, nil
	case "by-cycle", "cycle":
		return PairingByCycle, nil
	}
	return PairingAdjacent, fmt.Errorf("unknown efficiency pairing %q (want adjacent or by-cycle)", s)
}

// DisplayOptions are the chart toggles.
type DisplayOptions struct {
	Overlay           Overlay
	ShowEnergyDensity bool
}
