package alignment

import (
	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
)

// AxialDirection returns the unit vector from p2 (origin) to p1 (far point)
func AxialDirection(p1, p2 stage.Point3) (r3.Vec, error) {
	d := r3.Sub(p1.Vec(), p2.Vec())
	n := r3.Norm(d)
	if n == 0 {
		return r3.Vec{}, &DegenerateAxisError{Point: p1}
	}
	return r3.Scale(1/n, d), nil
}
