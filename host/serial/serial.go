package serial

import (
	"io"

	"probestage/stage"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory pipes (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// FromStage converts the serial section of a stage configuration
func FromStage(cfg stage.SerialConfig) *Config {
	return &Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeoutMS,
	}
}
