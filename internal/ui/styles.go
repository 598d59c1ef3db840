package ui

import (
	"fmt"

	"github.com/foiaworks/foiad/internal/model"
)

// ANSI256 color codes.
const (
	colorAccent = 74  // blue: active lifecycle states
	colorGood   = 114 // green: verified and closed
	colorWarn   = 179 // amber: partial satisfaction, escalations
	colorBad    = 167 // red: denials
	colorMuted  = 245 // medium gray
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}

// RenderState returns the state name colored by lifecycle stage.
func RenderState(st model.State) string {
	switch st {
	case model.StateVerified, model.StateClosed:
		return render(colorGood, string(st))
	case model.StatePartiallySatisfied, model.StateEscalated:
		return render(colorWarn, string(st))
	case model.StateDenied:
		return render(colorBad, string(st))
	case model.StateWithdrawn:
		return render(colorMuted, string(st))
	default:
		return render(colorAccent, string(st))
	}
}

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
