package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Command represents a parsed G-code command
type Command struct {
	Type       byte             // 'G', 'M', 'T'
	Number     int              // Command number (e.g., 1 for G1, 91 for G91)
	Parameters map[byte]float64 // Parameters (X, Y, Z, F, etc.)
	Comment    string           // Comment text
}

// HasParameter checks if a parameter exists in the command
func (cmd *Command) HasParameter(param byte) bool {
	_, ok := cmd.Parameters[param]
	return ok
}

// GetParameter gets a parameter value, or returns the default if not present
func (cmd *Command) GetParameter(param byte, defaultValue float64) float64 {
	if val, ok := cmd.Parameters[param]; ok {
		return val
	}
	return defaultValue
}

// Parser handles G-code parsing
type Parser struct{}

// NewParser creates a new G-code parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine parses a single line of G-code. Blank lines yield a nil command.
func (p *Parser) ParseLine(line string) (*Command, error) {
	code, comment := splitComment(line)
	fields := strings.Fields(code)
	if len(fields) == 0 {
		if comment == "" {
			return nil, nil
		}
		return &Command{Parameters: map[byte]float64{}, Comment: comment}, nil
	}

	cmd := &Command{
		Parameters: make(map[byte]float64),
		Comment:    comment,
	}

	first := fields[0]
	switch letter := toUpper(first[0]); letter {
	case 'G', 'M', 'T':
		num, err := strconv.Atoi(first[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid command %q: %w", first, err)
		}
		cmd.Type = letter
		cmd.Number = num
		fields = fields[1:]
	}

	for _, field := range fields {
		letter := toUpper(field[0])
		if !isLetter(letter) {
			return nil, fmt.Errorf("invalid parameter %q", field)
		}
		value, err := strconv.ParseFloat(field[1:], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %c: %w", letter, err)
		}
		cmd.Parameters[letter] = value
	}

	return cmd, nil
}

// splitComment separates a trailing ';' or '(' comment from the code
func splitComment(line string) (string, string) {
	if i := strings.IndexAny(line, ";("); i >= 0 {
		return line[:i], strings.TrimSpace(line[i:])
	}
	return line, ""
}

// isLetter checks if a byte is an uppercase letter
func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// toUpper converts a byte to uppercase
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
