package jog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
	"probestage/stage/kinematics"
)

// Decimals is the number of decimal places of a commanded displacement.
// Planned deltas are rounded to this resolution so the tracked position
// matches what the controller is told to do.
const Decimals = 4

var resolutionScale = math.Pow10(Decimals)

// Quantize rounds a displacement in mm to the commanded resolution
func Quantize(v float64) float64 {
	return math.Round(v*resolutionScale) / resolutionScale
}

// Direction is a logical probe direction
type Direction int

const (
	Lateral Direction = iota
	Elevational
	Axial
)

func (d Direction) String() string {
	switch d {
	case Lateral:
		return "lat"
	case Elevational:
		return "elev"
	case Axial:
		return "ax"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts short and long direction names
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lat", "lateral":
		return Lateral, nil
	case "elev", "elevation", "elevational":
		return Elevational, nil
	case "ax", "axial":
		return Axial, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (use lat, elev or ax)", name)
	}
}

// Move represents a planned jog along one probe direction
type Move struct {
	Direction Direction
	Distance  float64      // Requested distance (mm), signed
	Start     stage.Point3 // Stage position before the move
	End       stage.Point3 // Stage position after the move
	Delta     r3.Vec       // Per-motor displacement (mm), quantised
	Steps     []int64      // Per-motor step delta, X, Y, Z
}

// Jogger turns logical probe moves into stage moves using the step vectors
type Jogger struct {
	kinematics kinematics.Kinematics
	vectors    stage.StepVectors
	position   stage.Point3
}

// NewJogger creates a jogger starting at the stage origin
func NewJogger(kin kinematics.Kinematics, vectors stage.StepVectors) *Jogger {
	return &Jogger{
		kinematics: kin,
		vectors:    vectors,
	}
}

// Vectors returns the step vectors in use
func (j *Jogger) Vectors() stage.StepVectors {
	return j.vectors
}

// Position returns the tracked stage position
func (j *Jogger) Position() stage.Point3 {
	return j.position
}

// SetPosition sets the tracked stage position (after homing, etc.)
func (j *Jogger) SetPosition(pos stage.Point3) error {
	if err := j.kinematics.CheckLimits(pos); err != nil {
		return err
	}
	j.position = pos
	return nil
}

func (j *Jogger) vector(dir Direction) (r3.Vec, error) {
	switch dir {
	case Lateral:
		return j.vectors.Lat, nil
	case Elevational:
		return j.vectors.Elev, nil
	case Axial:
		return j.vectors.Ax, nil
	}
	return r3.Vec{}, fmt.Errorf("unknown direction %d", int(dir))
}

// Plan computes the stage move for distance mm along dir. The tracked
// position is not changed until Commit.
func (j *Jogger) Plan(dir Direction, distance float64) (*Move, error) {
	if scalar.EqualWithinAbs(distance, 0, 1e-9) {
		return nil, errors.New("jog distance must be non-zero")
	}

	u, err := j.vector(dir)
	if err != nil {
		return nil, err
	}

	raw := r3.Scale(distance, u)
	delta := r3.Vec{X: Quantize(raw.X), Y: Quantize(raw.Y), Z: Quantize(raw.Z)}
	if delta == (r3.Vec{}) {
		return nil, fmt.Errorf("jog %s %g mm is below the commanded resolution", dir, distance)
	}
	end := stage.PointFromVec(r3.Add(j.position.Vec(), delta))

	startSteps, err := j.kinematics.CalcPosition(j.position)
	if err != nil {
		return nil, fmt.Errorf("current position: %w", err)
	}
	endSteps, err := j.kinematics.CalcPosition(end)
	if err != nil {
		return nil, fmt.Errorf("jog %s %g mm: %w", dir, distance, err)
	}

	steps := make([]int64, len(endSteps))
	for i := range endSteps {
		steps[i] = endSteps[i] - startSteps[i]
	}

	return &Move{
		Direction: dir,
		Distance:  distance,
		Start:     j.position,
		End:       end,
		Delta:     delta,
		Steps:     steps,
	}, nil
}

// Commit records a planned move as executed
func (j *Jogger) Commit(move *Move) error {
	if move.Start != j.position {
		return errors.New("move was planned from a different position")
	}
	j.position = move.End
	return nil
}
