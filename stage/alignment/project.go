package alignment

import (
	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
)

// projectStepVectors rotates the lateral and elevational reference axes and
// returns the step vectors in stage labelling (v[2], v[1], v[3]).
//
// The rotation was solved in the stage frame, so the output relabelling is
// applied to the reference axis first and the rotated vector needs no
// further change. The axial step is the measured direction itself.
func projectStepVectors(m *r3.Mat, mapping stage.AxisMapping, axial r3.Vec) stage.StepVectors {
	return stage.StepVectors{
		Lat:  apply(m, stageAxis(mapping.Lat)),
		Elev: apply(m, stageAxis(mapping.Elev)),
		Ax:   axial,
	}
}
