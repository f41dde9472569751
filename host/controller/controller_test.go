package controller

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"probestage/stage"
	"probestage/stage/gcode"
	"probestage/stage/jog"
	"probestage/stage/kinematics"
)

// fakePort replays scripted controller output and records what was written
type fakePort struct {
	io.Reader
	written bytes.Buffer
	closed  bool
}

func newFakePort(replies string) *fakePort {
	return &fakePort{Reader: strings.NewReader(replies)}
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }
func (p *fakePort) Flush() error                { return nil }

func TestSendLine(t *testing.T) {
	port := newFakePort("X:0.00 Y:0.00 Z:0.00\nok\n")
	c := New(port)

	info, err := c.SendLine("M114")
	if err != nil {
		t.Fatalf("SendLine failed: %v", err)
	}
	if len(info) != 1 || info[0] != "X:0.00 Y:0.00 Z:0.00" {
		t.Errorf("Unexpected info lines: %v", info)
	}
	if port.written.String() != "M114\n" {
		t.Errorf("Unexpected output: %q", port.written.String())
	}
}

func TestSendLineErrors(t *testing.T) {
	c := New(newFakePort("error: unknown command\n"))
	_, err := c.SendLine("G999")
	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("Expected ReplyError, got %v", err)
	}
	if replyErr.Line != "G999" {
		t.Errorf("Expected rejected line G999, got %q", replyErr.Line)
	}

	c = New(newFakePort("busy\n"))
	if _, err := c.SendLine("G28"); !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF when the controller stops replying, got %v", err)
	}
}

func TestSendMove(t *testing.T) {
	port := newFakePort("ok\nok\nok\n")
	c := New(port)

	var trace bytes.Buffer
	c.SetTrace(&trace)

	move := &jog.Move{Direction: jog.Axial, Distance: 1, Delta: r3.Vec{X: 0.5, Z: 0.866}}
	if err := c.SendMove(move, 2); err != nil {
		t.Fatalf("SendMove failed: %v", err)
	}

	want := "G91\nG1 X0.5 Y0 Z0.866 F120\nG90\n"
	if port.written.String() != want {
		t.Errorf("Expected output %q, got %q", want, port.written.String())
	}
	if !strings.Contains(trace.String(), "<< ok") {
		t.Errorf("Trace missing replies: %q", trace.String())
	}

	if err := c.Close(); err != nil || !port.closed {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := c.SendLine("G90"); err == nil {
		t.Error("Expected error after Close")
	}
}

func TestSendMoveRestoresAbsoluteMode(t *testing.T) {
	port := newFakePort("ok\nerror: out of bounds\nok\n")
	c := New(port)

	move := &jog.Move{Direction: jog.Lateral, Distance: 1, Delta: r3.Vec{X: 1}}
	err := c.SendMove(move, 2)

	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("Expected ReplyError, got %v", err)
	}
	if replyErr.Line != "G1 X1 Y0 Z0 F120" {
		t.Errorf("Expected the move to be rejected, got %q", replyErr.Line)
	}

	want := "G91\nG1 X1 Y0 Z0 F120\nG90\n"
	if port.written.String() != want {
		t.Errorf("Expected output %q, got %q", want, port.written.String())
	}
}

func TestSendMoveReportsFailedRestore(t *testing.T) {
	port := newFakePort("ok\nerror: out of bounds\nerror: busy\n")
	c := New(port)

	move := &jog.Move{Direction: jog.Lateral, Distance: 1, Delta: r3.Vec{X: 1}}
	err := c.SendMove(move, 2)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "out of bounds") || !strings.Contains(err.Error(), "restore absolute mode") {
		t.Errorf("Expected both failures in %q", err)
	}
}

func TestSendMoveStopsWhenRelativeModeRejected(t *testing.T) {
	port := newFakePort("error: unsupported\n")
	c := New(port)

	move := &jog.Move{Direction: jog.Lateral, Distance: 1, Delta: r3.Vec{X: 1}}
	if err := c.SendMove(move, 2); err == nil {
		t.Fatal("Expected error")
	}
	if port.written.String() != "G91\n" {
		t.Errorf("Expected only G91 to be sent, got %q", port.written.String())
	}
}

func TestSentJogsMatchTrackedPosition(t *testing.T) {
	const jogs = 1000
	port := newFakePort(strings.Repeat("ok\n", 3*jogs))
	c := New(port)

	kin := kinematics.NewCartesianLimits(stage.StageLimits{XLen: 10, YLen: 10, ZLen: 10})
	s := 1 / math.Sqrt2
	jogger := jog.NewJogger(kin, stage.StepVectors{
		Lat:  r3.Vec{X: s, Z: -s},
		Elev: r3.Vec{Y: 1},
		Ax:   r3.Vec{X: s, Z: s},
	})

	for i := 0; i < jogs; i++ {
		move, err := jogger.Plan(jog.Axial, 0.01)
		if err != nil {
			t.Fatalf("Jog %d: Plan failed: %v", i, err)
		}
		if err := c.SendMove(move, 2); err != nil {
			t.Fatalf("Jog %d: SendMove failed: %v", i, err)
		}
		if err := jogger.Commit(move); err != nil {
			t.Fatalf("Jog %d: Commit failed: %v", i, err)
		}
	}

	// Replay the relative moves the controller received
	var commanded r3.Vec
	parser := gcode.NewParser()
	for _, line := range strings.Split(strings.TrimSpace(port.written.String()), "\n") {
		cmd, err := parser.ParseLine(line)
		if err != nil {
			t.Fatalf("Sent line %q does not parse: %v", line, err)
		}
		if cmd.Type != 'G' || cmd.Number != 1 {
			continue
		}
		commanded.X += cmd.GetParameter('X', 0)
		commanded.Y += cmd.GetParameter('Y', 0)
		commanded.Z += cmd.GetParameter('Z', 0)
	}

	pos := jogger.Position()
	if !scalar.EqualWithinAbs(pos.X, commanded.X, 1e-9) ||
		!scalar.EqualWithinAbs(pos.Y, commanded.Y, 1e-9) ||
		!scalar.EqualWithinAbs(pos.Z, commanded.Z, 1e-9) {
		t.Errorf("Tracked position %s differs from commanded %v", pos, commanded)
	}
}
