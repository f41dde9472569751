package kinematics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"probestage/stage"
)

// AxisViolation describes one coordinate outside its travel range
type AxisViolation struct {
	Axis   string
	Value  float64
	Limits AxisLimits
}

func (v AxisViolation) String() string {
	return fmt.Sprintf("%s=%g outside [%g, %g]", v.Axis, v.Value, v.Limits.Min, v.Limits.Max)
}

// LimitError lists every axis of a position that is out of range
type LimitError struct {
	Violations []AxisViolation
}

func (e *LimitError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "position out of limits: " + strings.Join(parts, ", ")
}

// Cartesian implements direct Cartesian kinematics: motor-1, motor-2 and
// motor-3 drive X, Y and Z 1:1.
type Cartesian struct {
	limits     [3]AxisLimits
	stepsPerMM [3]float64
}

var axisNames = []string{"x", "y", "z"}

// NewCartesian creates a new Cartesian kinematics instance
func NewCartesian(config *stage.StageConfig) (*Cartesian, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	k := NewCartesianLimits(config.Limits)
	for i, name := range axisNames {
		axis, ok := config.Axes[name]
		if !ok {
			return nil, fmt.Errorf("%s axis not configured", strings.ToUpper(name))
		}
		if axis.StepsPerMM <= 0 {
			return nil, fmt.Errorf("%s axis steps per mm must be positive", strings.ToUpper(name))
		}
		k.stepsPerMM[i] = axis.StepsPerMM
		if axis.InvertDir {
			k.stepsPerMM[i] = -axis.StepsPerMM
		}
	}

	return k, nil
}

// NewCartesianLimits creates a Cartesian instance that only knows the
// stage travel. CalcPosition assumes one step per mm.
func NewCartesianLimits(limits stage.StageLimits) *Cartesian {
	return &Cartesian{
		limits: [3]AxisLimits{
			Symmetric(limits.XLen),
			Symmetric(limits.YLen),
			Symmetric(limits.ZLen),
		},
		stepsPerMM: [3]float64{1, 1, 1},
	}
}

// CalcPosition converts stage coordinates to stepper positions.
// Positions are returned in order: X, Y, Z.
func (k *Cartesian) CalcPosition(pos stage.Point3) ([]int64, error) {
	if err := k.CheckLimits(pos); err != nil {
		return nil, err
	}

	coords := [3]float64{pos.X, pos.Y, pos.Z}
	steps := make([]int64, 3)
	for i := range coords {
		steps[i] = int64(math.Round(coords[i] * k.stepsPerMM[i]))
	}
	return steps, nil
}

// GetAxisNames returns the axis names for Cartesian kinematics
func (k *Cartesian) GetAxisNames() []string {
	return []string{"x", "y", "z"}
}

// CheckLimits validates that a position is within configured limits.
// Every offending axis is reported, not only the first.
func (k *Cartesian) CheckLimits(pos stage.Point3) error {
	var violations []AxisViolation

	coords := [3]float64{pos.X, pos.Y, pos.Z}
	for i, v := range coords {
		// NaN fails Contains and is reported too
		if !k.limits[i].Contains(v) {
			violations = append(violations, AxisViolation{Axis: axisNames[i], Value: v, Limits: k.limits[i]})
		}
	}

	if len(violations) > 0 {
		return &LimitError{Violations: violations}
	}
	return nil
}
