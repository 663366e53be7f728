package tui

// Key bindings handled in the list view.
const (
	KeyQuit         = "q"
	KeyCtrlC        = "ctrl+c"
	KeyHelp         = "?"
	KeyToggle       = " "
	KeyToggleAll    = "a"
	KeyChargeFirst  = "c"
	KeyEfficiency   = "e"
	KeyVoltage      = "v"
	KeyDensity      = "d"
	KeyPairing      = "b"
	KeyEditCurrent  = "i"
	KeyEditVolume   = "l"
	KeyImport       = "o"
	KeyExport       = "x"
	KeyClipboard    = "y"
	KeyPlots        = "p"
	KeyDetail       = "enter"
	KeyBack         = "esc"
	KeyInputConfirm = "enter"
)
