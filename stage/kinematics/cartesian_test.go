package kinematics

import (
	"errors"
	"math"
	"testing"

	"probestage/stage"
)

func TestCheckLimits(t *testing.T) {
	k := NewCartesianLimits(stage.StageLimits{XLen: 10, YLen: 20, ZLen: 30})

	tests := []struct {
		pos  stage.Point3
		axes []string
	}{
		{pos: stage.Point3{X: 0, Y: 0, Z: 0}},
		{pos: stage.Point3{X: 10, Y: -20, Z: 30}},
		{pos: stage.Point3{X: 10.001, Y: 0, Z: 0}, axes: []string{"x"}},
		{pos: stage.Point3{X: 0, Y: -21, Z: 31}, axes: []string{"y", "z"}},
		{pos: stage.Point3{X: -11, Y: 21, Z: -31}, axes: []string{"x", "y", "z"}},
		{pos: stage.Point3{X: math.NaN(), Y: 0, Z: 0}, axes: []string{"x"}},
	}

	for _, test := range tests {
		err := k.CheckLimits(test.pos)
		if len(test.axes) == 0 {
			if err != nil {
				t.Errorf("%s: unexpected error %v", test.pos, err)
			}
			continue
		}

		var limitErr *LimitError
		if !errors.As(err, &limitErr) {
			t.Errorf("%s: expected LimitError, got %v", test.pos, err)
			continue
		}
		if len(limitErr.Violations) != len(test.axes) {
			t.Errorf("%s: expected %d violations, got %d", test.pos, len(test.axes), len(limitErr.Violations))
			continue
		}
		for i, axis := range test.axes {
			if limitErr.Violations[i].Axis != axis {
				t.Errorf("%s: violation %d is axis %s, expected %s", test.pos, i, limitErr.Violations[i].Axis, axis)
			}
		}
	}
}

func TestCalcPosition(t *testing.T) {
	cfg := &stage.StageConfig{
		Limits: stage.StageLimits{XLen: 10, YLen: 10, ZLen: 10},
		Axes: map[string]stage.AxisConfig{
			"x": {StepsPerMM: 100},
			"y": {StepsPerMM: 200, InvertDir: true},
			"z": {StepsPerMM: 400},
		},
	}
	k, err := NewCartesian(cfg)
	if err != nil {
		t.Fatalf("NewCartesian failed: %v", err)
	}

	steps, err := k.CalcPosition(stage.Point3{X: 1.5, Y: 0.25, Z: -2})
	if err != nil {
		t.Fatalf("CalcPosition failed: %v", err)
	}
	want := []int64{150, -50, -800}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("Axis %d: expected %d steps, got %d", i, want[i], steps[i])
		}
	}

	if _, err := k.CalcPosition(stage.Point3{X: 11}); err == nil {
		t.Error("Expected limit error for out-of-range position")
	}
}

func TestNewCartesianRequiresAxes(t *testing.T) {
	cfg := &stage.StageConfig{
		Limits: stage.StageLimits{XLen: 1, YLen: 1, ZLen: 1},
		Axes: map[string]stage.AxisConfig{
			"x": {StepsPerMM: 100},
			"y": {StepsPerMM: 100},
		},
	}
	if _, err := NewCartesian(cfg); err == nil {
		t.Error("Expected error for missing Z axis")
	}
	if _, err := NewCartesian(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestCartesianImplementsKinematics(t *testing.T) {
	var kin Kinematics = NewCartesianLimits(stage.StageLimits{XLen: 1, YLen: 1, ZLen: 1})
	names := kin.GetAxisNames()
	if len(names) != 3 || names[0] != "x" || names[2] != "z" {
		t.Errorf("Unexpected axis names %v", names)
	}
}
