package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"probestage/host/controller"
	"probestage/host/serial"
	"probestage/stage"
	"probestage/stage/alignment"
	"probestage/stage/config"
	"probestage/stage/jog"
	"probestage/stage/kinematics"
)

var (
	configPath  = flag.String("config", "", "Stage configuration file (JSON)")
	p1Flag      = flag.String("p1", "", "Far point along the probe axis, \"x,y,z\" in mm")
	p2Flag      = flag.String("p2", "", "Origin point, \"x,y,z\" in mm")
	mapFlag     = flag.String("map", "", "Axis mapping \"ax,lat,elev\" using motor labels 1-3")
	device      = flag.String("device", "", "Serial device of the stage controller")
	baud        = flag.Int("baud", 0, "Baud rate")
	strict      = flag.Bool("strict", false, "Reject axial directions opposite the reference axis")
	jsonOutput  = flag.Bool("json", false, "Print the report as JSON")
	interactive = flag.Bool("interactive", false, "Start an interactive jog session")
	verbose     = flag.Bool("verbose", false, "Enable verbose output")
)

// report is the printable outcome of one computation
type report struct {
	RunID        string        `json:"run_id"`
	P1           stage.Point3  `json:"p1"`
	P2           stage.Point3  `json:"p2"`
	Mapping      string        `json:"mapping"`
	Lateral      r3.Vec        `json:"lateral"`
	Elevational  r3.Vec        `json:"elevational"`
	Axial        r3.Vec        `json:"axial"`
	RotationAxis r3.Vec        `json:"rotation_axis"`
	AngleDeg     float64       `json:"angle_deg"`
	AntiParallel bool          `json:"anti_parallel"`
	Matrix       [3][3]float64 `json:"matrix"`
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	p1, err := parsePoint(*p1Flag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -p1: %v\n", err)
		os.Exit(2)
	}
	p2, err := parsePoint(*p2Flag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -p2: %v\n", err)
		os.Exit(2)
	}

	in := alignment.Input{P1: p1, P2: p2, Mapping: cfg.Probe.Mapping, Limits: cfg.Limits}
	res, err := alignment.Compute(in, alignment.Options{StrictAntiParallel: cfg.Probe.StrictAntiParallel})
	if err != nil {
		printFailure(os.Stderr, err)
		os.Exit(1)
	}

	rep := newReport(in, res)
	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		printReport(os.Stdout, rep)
	}

	if !*interactive {
		return
	}

	if err := runSession(cfg, res.Vectors, p2); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file (or defaults) and applies flag overrides
func loadConfig() (*stage.StageConfig, error) {
	cfg := config.DefaultStageConfig()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *mapFlag != "" {
		mapping, err := parseMapping(*mapFlag)
		if err != nil {
			return nil, fmt.Errorf("-map: %w", err)
		}
		cfg.Probe.Mapping = mapping
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *baud != 0 {
		cfg.Serial.Baud = *baud
	}
	if *strict {
		cfg.Probe.StrictAntiParallel = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseTriple(raw string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected three comma-separated values, got %q", raw)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return out, fmt.Errorf("invalid value %q: %w", part, err)
		}
		out[i] = v
	}
	return out, nil
}

func parsePoint(raw string) (stage.Point3, error) {
	if raw == "" {
		return stage.Point3{}, errors.New("point is required")
	}
	v, err := parseTriple(raw)
	if err != nil {
		return stage.Point3{}, err
	}
	return stage.Point3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parseMapping(raw string) (stage.AxisMapping, error) {
	v, err := parseTriple(raw)
	if err != nil {
		return stage.AxisMapping{}, err
	}
	for _, x := range v {
		if x != float64(int(x)) {
			return stage.AxisMapping{}, fmt.Errorf("labels must be integers, got %q", raw)
		}
	}
	return stage.AxisMapping{Ax: stage.AxisLabel(v[0]), Lat: stage.AxisLabel(v[1]), Elev: stage.AxisLabel(v[2])}, nil
}

func newReport(in alignment.Input, res *alignment.Result) report {
	rep := report{
		RunID:        uuid.NewString(),
		P1:           in.P1,
		P2:           in.P2,
		Mapping:      in.Mapping.String(),
		Lateral:      res.Vectors.Lat,
		Elevational:  res.Vectors.Elev,
		Axial:        res.Vectors.Ax,
		RotationAxis: res.Rotation.Axis,
		AngleDeg:     res.Rotation.Angle * 180 / math.Pi,
		AntiParallel: res.Rotation.AntiParallel,
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rep.Matrix[i][j] = res.Matrix.At(i, j)
		}
	}
	return rep
}

func formatVec(v r3.Vec) string {
	return fmt.Sprintf("(%+.6f, %+.6f, %+.6f)", v.X, v.Y, v.Z)
}

func printReport(w io.Writer, rep report) {
	fmt.Fprintf(w, "Probe alignment %s\n", rep.RunID)
	fmt.Fprintf(w, "  p1 %s  p2 %s  %s\n", rep.P1, rep.P2, rep.Mapping)
	fmt.Fprintf(w, "  lateral      %s\n", formatVec(rep.Lateral))
	fmt.Fprintf(w, "  elevational  %s\n", formatVec(rep.Elevational))
	fmt.Fprintf(w, "  axial        %s\n", formatVec(rep.Axial))
	if *verbose {
		fmt.Fprintf(w, "  rotation     %.4f deg about %s\n", rep.AngleDeg, formatVec(rep.RotationAxis))
		for _, row := range rep.Matrix {
			fmt.Fprintf(w, "    [%+.6f %+.6f %+.6f]\n", row[0], row[1], row[2])
		}
	}
	if rep.AntiParallel {
		fmt.Fprintln(w, "  warning: axial direction opposite the reference axis; rotation axis chosen by tie-break")
	}
}

// printFailure lists every cause of a validation failure on its own line
func printFailure(w io.Writer, err error) {
	var failure *alignment.ValidationFailure
	if errors.As(err, &failure) {
		fmt.Fprintln(w, "Error: invalid input")
		for _, cause := range failure.Causes {
			fmt.Fprintf(w, "  - %v\n", cause)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// newSessionJogger builds the jogger for an interactive session, tracking
// from start, normally the measured origin p2.
func newSessionJogger(cfg *stage.StageConfig, vectors stage.StepVectors, start stage.Point3) (*jog.Jogger, error) {
	kin, err := kinematics.NewCartesian(cfg)
	if err != nil {
		return nil, err
	}
	jogger := jog.NewJogger(kin, vectors)
	if err := jogger.SetPosition(start); err != nil {
		return nil, fmt.Errorf("start position %s: %w", start, err)
	}
	return jogger, nil
}

// runSession runs the interactive jog loop starting from the origin point
func runSession(cfg *stage.StageConfig, vectors stage.StepVectors, start stage.Point3) error {
	jogger, err := newSessionJogger(cfg, vectors, start)
	if err != nil {
		return err
	}

	var ctrl *controller.Controller
	if cfg.Serial.Device != "" {
		fmt.Printf("Connecting to stage controller on %s...\n", cfg.Serial.Device)
		ctrl, err = controller.Connect(serial.FromStage(cfg.Serial))
		if err != nil {
			return err
		}
		defer ctrl.Close()
		if *verbose {
			ctrl.SetTrace(os.Stdout)
		}
		fmt.Println("Connected successfully!")
	} else {
		fmt.Println("No controller device given; moves are planned but not sent.")
	}

	fmt.Printf("Tracking from %s (use 'setpos' if the stage has moved)\n", jogger.Position())
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil

		case "help", "?":
			printHelp()

		case "vectors":
			v := jogger.Vectors()
			fmt.Printf("  lat  %s\n  elev %s\n  ax   %s\n", formatVec(v.Lat), formatVec(v.Elev), formatVec(v.Ax))

		case "pos":
			fmt.Printf("  %s\n", jogger.Position())

		case "setpos":
			if len(parts) != 2 {
				fmt.Println("Usage: setpos x,y,z")
				continue
			}
			pos, err := parsePoint(parts[1])
			if err == nil {
				err = jogger.SetPosition(pos)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "jog":
			if err := doJog(jogger, ctrl, cfg.JogFeedRate, parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "send":
			if ctrl == nil {
				fmt.Fprintln(os.Stderr, "Error: no controller connected")
				continue
			}
			info, err := ctrl.SendLine(strings.Join(parts[1:], " "))
			for _, line := range info {
				fmt.Printf("  %s\n", line)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	return scanner.Err()
}

func doJog(jogger *jog.Jogger, ctrl *controller.Controller, feedRate float64, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: jog <lat|elev|ax> <mm>")
	}
	dir, err := jog.ParseDirection(args[0])
	if err != nil {
		return err
	}
	distance, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid distance %q: %w", args[1], err)
	}

	move, err := jogger.Plan(dir, distance)
	if err != nil {
		return err
	}
	fmt.Printf("  %s %+g mm: %s -> %s, steps %v\n", dir, distance, move.Start, move.End, move.Steps)

	if ctrl != nil {
		if err := ctrl.SendMove(move, feedRate); err != nil {
			return err
		}
	}
	return jogger.Commit(move)
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help                 - Show this help message")
	fmt.Println("  vectors              - Print the step vectors")
	fmt.Println("  pos                  - Print the tracked stage position")
	fmt.Println("  setpos x,y,z         - Set the tracked stage position")
	fmt.Println("  jog <lat|elev|ax> mm - Move along a probe direction")
	fmt.Println("  send <gcode...>      - Send a raw G-code line")
	fmt.Println("  quit/exit/q          - Exit the program")
	fmt.Println()
}
