package alignment

import (
	"errors"

	"probestage/stage"
	"probestage/stage/kinematics"
)

// Validate checks the geometric and labelling preconditions of a
// computation. It returns nil or a *ValidationFailure listing every
// violated condition.
func Validate(in Input) error {
	var causes []error

	kin := kinematics.NewCartesianLimits(in.Limits)
	points := []struct {
		name string
		pos  stage.Point3
	}{
		{"p1", in.P1},
		{"p2", in.P2},
	}
	for _, p := range points {
		err := kin.CheckLimits(p.pos)
		if err == nil {
			continue
		}
		var limitErr *kinematics.LimitError
		if !errors.As(err, &limitErr) {
			return err
		}
		causes = append(causes, &OutOfRangeError{Point: p.name, Position: p.pos, Violations: limitErr.Violations})
	}

	if in.P1.Z < in.P2.Z {
		causes = append(causes, &AxialOrderError{P1Z: in.P1.Z, P2Z: in.P2.Z})
	}

	m := in.Mapping
	labels := []struct {
		role  string
		label stage.AxisLabel
	}{
		{"ax", m.Ax},
		{"lat", m.Lat},
		{"elev", m.Elev},
	}
	for _, l := range labels {
		if !l.label.Valid() {
			causes = append(causes, &InvalidAxisLabelError{Role: l.role, Label: l.label})
		}
	}
	if !m.Unique() {
		causes = append(causes, &NonUniqueAxisMappingError{Mapping: m})
	}

	if len(causes) > 0 {
		return &ValidationFailure{Causes: causes}
	}
	return nil
}
