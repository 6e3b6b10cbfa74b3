// Package statusled drives the front LED that tells the owner what the
// device is doing.
package statusled

import "github.com/larkhq/larkd/wifi"

// Pattern is what the LED shows.
type Pattern int

const (
	// PatternOff keeps the LED dark.
	PatternOff Pattern = iota
	// PatternSolid keeps the LED lit.
	PatternSolid
	// PatternBlink toggles the LED slowly.
	PatternBlink
	// PatternBlinkFast toggles the LED quickly.
	PatternBlinkFast
)

func (p Pattern) String() string {
	switch p {
	case PatternOff:
		return "off"
	case PatternSolid:
		return "solid"
	case PatternBlink:
		return "blink"
	case PatternBlinkFast:
		return "blink-fast"
	default:
		return "unknown"
	}
}

// PatternFor maps a status snapshot to the pattern shown for it. An
// active provisioning session outranks the connection state so the
// owner can see the device waiting for setup.
func PatternFor(status wifi.Status) Pattern {
	switch {
	case status.Provisioning:
		return PatternBlinkFast
	case status.Connected:
		return PatternSolid
	case status.Connecting:
		return PatternBlink
	default:
		return PatternOff
	}
}

// Led is a pattern sink. Set must never block, it may be called from
// event listeners.
type Led interface {
	Start() error
	Stop() error
	Set(pattern Pattern)
}
