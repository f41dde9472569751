package alignment

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
)

// parallelTolerance bounds sin(theta) below which two unit vectors are
// treated as parallel or anti-parallel.
const parallelTolerance = 1e-12

// referenceAxes holds the nominal motor axes in rig labelling, indexed by
// stage.AxisLabel. The rig swaps the first two components relative to the
// stage frame, so motor-1 is (0,1,0) and motor-2 is (1,0,0).
var referenceAxes = [4]r3.Vec{
	{},
	{X: 0, Y: 1, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// ReferenceAxis returns the nominal motor axis for a label in rig labelling.
// ok is false when the label is not 1, 2 or 3.
func ReferenceAxis(label stage.AxisLabel) (v r3.Vec, ok bool) {
	if !label.Valid() {
		return r3.Vec{}, false
	}
	return referenceAxes[label], true
}

// stageAxis returns the reference axis for a validated label in the stage
// frame.
func stageAxis(label stage.AxisLabel) r3.Vec {
	v, _ := ReferenceAxis(label)
	return swapXY(v)
}

// swapXY converts between rig labelling and the stage frame. It is its own
// inverse.
func swapXY(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.Y, Y: v.X, Z: v.Z}
}

// Rotation is an axis-angle pair. Axis is a unit vector in the stage frame
// and Angle is in radians within [0, pi].
type Rotation struct {
	Axis  r3.Vec
	Angle float64

	// AntiParallel is set when Axis was chosen by the tie-break rule
	// because the source and target directions were opposite.
	AntiParallel bool
}

// MinimalRotation returns the smallest rotation carrying unit vector from
// onto unit vector to.
//
// When the vectors are parallel the rotation is the identity and Axis is
// from. When they are opposite, any axis orthogonal to from works; the
// axis is then unit(from x e) where e is the stage basis vector matching
// the smallest |component| of from, ties going to X, then Y, then Z. With
// strict set, the opposite case returns *AmbiguousRotationAxisError.
func MinimalRotation(from, to r3.Vec, strict bool) (Rotation, error) {
	uRaw := r3.Cross(from, to)
	sinTheta := r3.Norm(uRaw)
	cosTheta := r3.Dot(from, to)
	theta := math.Atan2(sinTheta, cosTheta)

	if sinTheta > parallelTolerance {
		return Rotation{Axis: r3.Scale(1/sinTheta, uRaw), Angle: theta}, nil
	}

	if cosTheta > 0 {
		return Rotation{Axis: from, Angle: theta}, nil
	}

	if strict {
		return Rotation{}, &AmbiguousRotationAxisError{Reference: from, Measured: to}
	}
	return Rotation{Axis: orthogonalAxis(from), Angle: math.Pi, AntiParallel: true}, nil
}

// orthogonalAxis returns a unit vector orthogonal to v
func orthogonalAxis(v r3.Vec) r3.Vec {
	basis := [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	abs := [3]float64{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}

	best := 0
	for i := 1; i < 3; i++ {
		if abs[i] < abs[best] {
			best = i
		}
	}
	return r3.Unit(r3.Cross(v, basis[best]))
}

// Matrix builds the rotation matrix with the Rodrigues formula
// R = I cos(theta) + sin(theta) [u]x + (1 - cos(theta)) u u^T.
func (r Rotation) Matrix() *r3.Mat {
	c, s := math.Cos(r.Angle), math.Sin(r.Angle)
	u := r.Axis

	m := r3.Eye()
	m.Scale(c, m)

	cross := r3.Skew(u)
	cross.Scale(s, cross)
	m.Add(m, cross)

	outer := r3.NewMat([]float64{
		u.X * u.X, u.X * u.Y, u.X * u.Z,
		u.Y * u.X, u.Y * u.Y, u.Y * u.Z,
		u.Z * u.X, u.Z * u.Y, u.Z * u.Z,
	})
	outer.Scale(1-c, outer)
	m.Add(m, outer)

	return m
}

// apply returns the product m v
func apply(m *r3.Mat, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}
