package gcode

import (
	"strconv"

	"probestage/stage/jog"
)

// FormatJog renders a planned jog as relative-positioning G-code.
// feedRate is in mm/s and is emitted as mm/min. Planned deltas are already
// quantised to jog.Decimals, so the emitted values are exact.
func FormatJog(move *jog.Move, feedRate float64) []string {
	return []string{
		"G91",
		"G1" +
			" X" + formatFloat(move.Delta.X) +
			" Y" + formatFloat(move.Delta.Y) +
			" Z" + formatFloat(move.Delta.Z) +
			" F" + formatFloat(feedRate*60),
		"G90",
	}
}

// formatFloat prints jog.Decimals places without trailing zeros
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', jog.Decimals, 64)
	// Trim trailing zeros and a dangling point
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
