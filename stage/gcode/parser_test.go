package gcode

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage/jog"
)

func TestParseBasicCommands(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		input   string
		cmdType byte
		cmdNum  int
		params  map[byte]float64
	}{
		{
			input:   "G1 X1.5 Y-0.25 Z0 F300",
			cmdType: 'G',
			cmdNum:  1,
			params:  map[byte]float64{'X': 1.5, 'Y': -0.25, 'Z': 0, 'F': 300},
		},
		{
			input:   "g91",
			cmdType: 'G',
			cmdNum:  91,
			params:  map[byte]float64{},
		},
		{
			input:   "G28 X0 ; home x",
			cmdType: 'G',
			cmdNum:  28,
			params:  map[byte]float64{'X': 0},
		},
		{
			input:   "M114",
			cmdType: 'M',
			cmdNum:  114,
			params:  map[byte]float64{},
		},
	}

	for _, test := range tests {
		cmd, err := parser.ParseLine(test.input)
		if err != nil {
			t.Errorf("Failed to parse '%s': %v", test.input, err)
			continue
		}

		if cmd == nil {
			t.Errorf("Got nil command for '%s'", test.input)
			continue
		}

		if cmd.Type != test.cmdType {
			t.Errorf("Expected type %c, got %c for '%s'", test.cmdType, cmd.Type, test.input)
		}

		if cmd.Number != test.cmdNum {
			t.Errorf("Expected number %d, got %d for '%s'", test.cmdNum, cmd.Number, test.input)
		}

		if len(cmd.Parameters) != len(test.params) {
			t.Errorf("Expected %d parameters, got %d for '%s'", len(test.params), len(cmd.Parameters), test.input)
		}
		for param, value := range test.params {
			if !cmd.HasParameter(param) {
				t.Errorf("Missing parameter %c in '%s'", param, test.input)
				continue
			}
			if got := cmd.GetParameter(param, -1); got != value {
				t.Errorf("Parameter %c: expected %g, got %g in '%s'", param, value, got, test.input)
			}
		}
	}
}

func TestParseComments(t *testing.T) {
	parser := NewParser()

	cmd, err := parser.ParseLine("G90 ; absolute")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cmd.Comment != "; absolute" {
		t.Errorf("Expected comment '; absolute', got '%s'", cmd.Comment)
	}

	cmd, err = parser.ParseLine("(probe aligned)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cmd == nil || cmd.Type != 0 || cmd.Comment != "(probe aligned)" {
		t.Errorf("Expected comment-only command, got %+v", cmd)
	}

	cmd, err = parser.ParseLine("   ")
	if err != nil || cmd != nil {
		t.Errorf("Expected nil command for blank line, got %+v, %v", cmd, err)
	}
}

func TestParseErrors(t *testing.T) {
	parser := NewParser()

	for _, line := range []string{"Gx1", "G1 X", "G1 Xabc", "G1 10"} {
		if _, err := parser.ParseLine(line); err == nil {
			t.Errorf("Expected error for '%s'", line)
		}
	}
}

func TestFormatJog(t *testing.T) {
	move := &jog.Move{
		Direction: jog.Lateral,
		Delta:     r3.Vec{X: 0.70710678, Y: -0.00000001, Z: -2},
	}

	lines := FormatJog(move, 5)
	want := []string{"G91", "G1 X0.7071 Y0 Z-2 F300", "G90"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %v", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d: expected '%s', got '%s'", i, want[i], lines[i])
		}
	}

	cmd, err := NewParser().ParseLine(lines[1])
	if err != nil {
		t.Fatalf("Generated line does not parse: %v", err)
	}
	if cmd.Number != 1 || cmd.GetParameter('Z', 0) != -2 {
		t.Errorf("Unexpected parse of generated line: %+v", cmd)
	}
}
