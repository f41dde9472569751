package alignment

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
	"probestage/stage/kinematics"
)

// OutOfRangeError reports a measured point outside the stage travel
type OutOfRangeError struct {
	Point      string // "p1" or "p2"
	Position   stage.Point3
	Violations []kinematics.AxisViolation
}

func (e *OutOfRangeError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s %s out of stage range: %s", e.Point, e.Position, strings.Join(parts, ", "))
}

// AxialOrderError reports a far point lower than the origin
type AxialOrderError struct {
	P1Z float64
	P2Z float64
}

func (e *AxialOrderError) Error() string {
	return fmt.Sprintf("axial far point below origin: p1.z=%g < p2.z=%g", e.P1Z, e.P2Z)
}

// NonUniqueAxisMappingError reports an axis mapping that reuses a motor axis
type NonUniqueAxisMappingError struct {
	Mapping stage.AxisMapping
}

func (e *NonUniqueAxisMappingError) Error() string {
	return fmt.Sprintf("axis mapping labels not unique: %s", e.Mapping)
}

// InvalidAxisLabelError reports a mapping label outside {1, 2, 3}
type InvalidAxisLabelError struct {
	Role  string // "ax", "lat" or "elev"
	Label stage.AxisLabel
}

func (e *InvalidAxisLabelError) Error() string {
	return fmt.Sprintf("axis mapping %s=%d is not a motor axis (1, 2 or 3)", e.Role, e.Label)
}

// DegenerateAxisError reports coincident measured points
type DegenerateAxisError struct {
	Point stage.Point3
}

func (e *DegenerateAxisError) Error() string {
	return fmt.Sprintf("axial direction undefined: p1 and p2 coincide at %s", e.Point)
}

// AmbiguousRotationAxisError reports a measured axial direction exactly
// opposite the reference axis. It is only returned in strict mode.
type AmbiguousRotationAxisError struct {
	Reference r3.Vec
	Measured  r3.Vec
}

func (e *AmbiguousRotationAxisError) Error() string {
	return fmt.Sprintf("rotation axis ambiguous: measured direction %v is anti-parallel to reference %v", e.Measured, e.Reference)
}

// ValidationFailure collects every violated input condition
type ValidationFailure struct {
	Causes []error
}

func (f *ValidationFailure) Error() string {
	msgs := make([]string, len(f.Causes))
	for i, err := range f.Causes {
		msgs[i] = err.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual causes to errors.Is and errors.As
func (f *ValidationFailure) Unwrap() []error {
	return f.Causes
}
