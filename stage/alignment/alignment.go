// Package alignment derives the motor-space step vectors for a probe
// mounted on a 3-axis stage.
//
// The probe's axial direction is measured from two stage points. The
// smallest rotation carrying the nominal axial motor axis onto that
// direction is applied to the nominal lateral and elevational motor axes.
// Rotation about the axial direction itself (yaw) is assumed to be zero;
// array probes that need yaw correction are not supported.
//
// Computation runs in four stages: Validate, AxialDirection,
// MinimalRotation and the Rodrigues projection. A failure in one stage
// stops the pipeline and no partial result is returned.
package alignment

import (
	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
)

// Input holds everything needed for one computation
type Input struct {
	P1      stage.Point3 // Far point along the probe axis
	P2      stage.Point3 // Origin
	Mapping stage.AxisMapping
	Limits  stage.StageLimits
}

// Options tunes edge-case handling
type Options struct {
	// StrictAntiParallel returns *AmbiguousRotationAxisError instead of
	// resolving an anti-parallel axial direction with the tie-break rule.
	StrictAntiParallel bool
}

// Result is the outcome of a successful computation
type Result struct {
	Vectors  stage.StepVectors
	Axial    r3.Vec   // Measured axial direction, stage frame
	Rotation Rotation // Solved minimal rotation
	Matrix   *r3.Mat  // Rodrigues matrix of Rotation
}

// Compute runs the full pipeline
func Compute(in Input, opts Options) (*Result, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	udc, err := AxialDirection(in.P1, in.P2)
	if err != nil {
		return nil, err
	}

	ref := stageAxis(in.Mapping.Ax)
	rot, err := MinimalRotation(ref, udc, opts.StrictAntiParallel)
	if err != nil {
		return nil, err
	}

	m := rot.Matrix()
	return &Result{
		Vectors:  projectStepVectors(m, in.Mapping, udc),
		Axial:    udc,
		Rotation: rot,
		Matrix:   m,
	}, nil
}

// ComputeStepVectors returns the lateral, elevational and axial step
// vectors for the measured points p1 (far) and p2 (origin).
func ComputeStepVectors(p1, p2 stage.Point3, axdir stage.AxisMapping, limits stage.StageLimits) (stage.StepVectors, error) {
	res, err := Compute(Input{P1: p1, P2: p2, Mapping: axdir, Limits: limits}, Options{})
	if err != nil {
		return stage.StepVectors{}, err
	}
	return res.Vectors, nil
}
