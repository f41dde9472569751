package kinematics

import "probestage/stage"

// Kinematics defines the interface for coordinate transformations
type Kinematics interface {
	// CalcPosition converts stage coordinates to stepper positions
	CalcPosition(pos stage.Point3) ([]int64, error)

	// GetAxisNames returns the names of axes controlled by this kinematics
	GetAxisNames() []string

	// CheckLimits validates that a position is within configured limits
	CheckLimits(pos stage.Point3) error
}

// AxisLimits represents position limits for an axis
type AxisLimits struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the closed range
func (l AxisLimits) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Symmetric returns the range [-length, length]
func Symmetric(length float64) AxisLimits {
	return AxisLimits{Min: -length, Max: length}
}
