package stage

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point3 represents a position in stage coordinates (mm).
// X, Y and Z follow motor-1, motor-2 and motor-3 respectively.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// Vec returns the point as a gonum vector
func (p Point3) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// PointFromVec converts a gonum vector back into a stage point
func PointFromVec(v r3.Vec) Point3 {
	return Point3{X: v.X, Y: v.Y, Z: v.Z}
}

func (p Point3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// AxisLabel names a nominal motor axis: 1 (motor-1/x), 2 (motor-2/y), 3 (motor-3/z)
type AxisLabel int

const (
	AxisMotor1 AxisLabel = 1
	AxisMotor2 AxisLabel = 2
	AxisMotor3 AxisLabel = 3
)

// Valid reports whether the label is one of the three motor axes
func (l AxisLabel) Valid() bool {
	return l >= AxisMotor1 && l <= AxisMotor3
}

// AxisMapping declares which nominal motor axis is axial, lateral and
// elevational for the current probe orientation.
type AxisMapping struct {
	Ax   AxisLabel // Axial (probe pointing direction)
	Lat  AxisLabel // Lateral
	Elev AxisLabel // Elevational
}

// Unique reports whether the three labels are pairwise distinct
func (m AxisMapping) Unique() bool {
	return m.Ax != m.Lat && m.Ax != m.Elev && m.Lat != m.Elev
}

func (m AxisMapping) String() string {
	return fmt.Sprintf("ax=%d lat=%d elev=%d", m.Ax, m.Lat, m.Elev)
}

// StageLimits holds the symmetric travel range of each motor (mm).
// The valid region is [-XLen,XLen] x [-YLen,YLen] x [-ZLen,ZLen].
type StageLimits struct {
	XLen float64
	YLen float64
	ZLen float64
}

// StepVectors holds the motor-space displacement per 1 mm move along each
// logical probe direction.
type StepVectors struct {
	Lat  r3.Vec // Lateral
	Elev r3.Vec // Elevational
	Ax   r3.Vec // Axial
}

// AxisConfig represents configuration for a single motor axis
type AxisConfig struct {
	StepsPerMM  float64 // Steps per millimeter
	MaxVelocity float64 // Maximum velocity (mm/s)
	InvertDir   bool    // Invert direction signal
}

// ProbeConfig describes the probe orientation declared by the operator
type ProbeConfig struct {
	Mapping AxisMapping

	// Reject measured directions exactly opposite the axial reference
	// instead of resolving the rotation axis with the fixed tie-break.
	StrictAntiParallel bool
}

// SerialConfig describes the link to the stage controller
type SerialConfig struct {
	Device        string // Device path (e.g., "/dev/ttyACM0", "COM3")
	Baud          int    // Baud rate
	ReadTimeoutMS int    // Read timeout in milliseconds (0 = blocking)
}

// StageConfig represents the complete stage configuration
type StageConfig struct {
	Limits StageLimits
	Axes   map[string]AxisConfig // "x", "y", "z"
	Probe  ProbeConfig
	Serial SerialConfig

	JogFeedRate float64 // Feed rate for jog moves (mm/s)
}
