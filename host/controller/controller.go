package controller

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"probestage/host/serial"
	"probestage/stage/gcode"
	"probestage/stage/jog"
)

// ReplyError is an error reported by the stage controller
type ReplyError struct {
	Line  string // Command that was rejected
	Reply string // Controller reply
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("controller rejected %q: %s", e.Line, e.Reply)
}

// Controller represents a G-code connection to a stage controller
type Controller struct {
	port   serial.Port
	reader *bufio.Reader

	// Connection state
	connected bool

	// Optional trace of the exchanged lines
	trace io.Writer
}

// New wraps an already open port
func New(port serial.Port) *Controller {
	return &Controller{
		port:      port,
		reader:    bufio.NewReader(port),
		connected: true,
	}
}

// Connect opens the serial port described by cfg
func Connect(cfg *serial.Config) (*Controller, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return New(port), nil
}

// SetTrace copies every sent line and reply to w
func (c *Controller) SetTrace(w io.Writer) {
	c.trace = w
}

// Close closes the connection to the controller
func (c *Controller) Close() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	return c.port.Close()
}

// SendLine sends one G-code line and waits for "ok". Informational lines
// received before "ok" are returned.
func (c *Controller) SendLine(line string) ([]string, error) {
	if !c.connected {
		return nil, fmt.Errorf("not connected to controller")
	}

	line = strings.TrimSpace(line)
	if c.trace != nil {
		fmt.Fprintf(c.trace, ">> %s\n", line)
	}
	if _, err := io.WriteString(c.port, line+"\n"); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", line, err)
	}
	if err := c.port.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %q: %w", line, err)
	}

	var info []string
	for {
		reply, err := c.reader.ReadString('\n')
		reply = strings.TrimSpace(reply)
		if reply != "" && c.trace != nil {
			fmt.Fprintf(c.trace, "<< %s\n", reply)
		}

		switch {
		case reply == "ok" || strings.HasPrefix(reply, "ok "):
			return info, nil
		case strings.HasPrefix(reply, "error") || strings.HasPrefix(reply, "!!"):
			return info, &ReplyError{Line: line, Reply: reply}
		case reply != "":
			info = append(info, reply)
		}

		if err != nil {
			return info, fmt.Errorf("no reply to %q: %w", line, err)
		}
	}
}

// SendMove validates and sends a planned jog as relative G-code. Once the
// controller has accepted the switch to relative mode, absolute mode is
// restored even if the move itself is rejected.
func (c *Controller) SendMove(move *jog.Move, feedRate float64) (err error) {
	lines := gcode.FormatJog(move, feedRate)
	parser := gcode.NewParser()
	for _, line := range lines {
		if _, err := parser.ParseLine(line); err != nil {
			return fmt.Errorf("refusing malformed line %q: %w", line, err)
		}
	}

	enter, body, restore := lines[0], lines[1:len(lines)-1], lines[len(lines)-1]
	if _, err := c.SendLine(enter); err != nil {
		return err
	}
	defer func() {
		if _, restoreErr := c.SendLine(restore); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to restore absolute mode: %w", restoreErr))
		}
	}()

	for _, line := range body {
		if _, err := c.SendLine(line); err != nil {
			return err
		}
	}
	return nil
}
