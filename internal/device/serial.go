package device

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Serial release constants.
const (
	DefaultBaudRate    = 250000
	SerialReadTimeout  = 1000 * time.Millisecond
	releaseCardCommand = "M22\r\n"
	serialReadSize     = 4096
)

// SerialPort is the part of a serial connection the releaser needs.
type SerialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// SerialDialer opens a serial port at a baud rate.
type SerialDialer func(name string, baud int) (SerialPort, error)

// OpenSerial opens a real serial port, 8N1.
func OpenSerial(name string, baud int) (SerialPort, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}

	return port, nil
}

// SerialReleaser sends the firmware's "release SD card" command (M22) over
// the printer's serial line. The reply is logged, never parsed.
type SerialReleaser struct {
	Baud   int
	Dial   SerialDialer
	Logger *slog.Logger
}

// NewSerialReleaser creates a releaser for real ports.
func NewSerialReleaser(baud int, logger *slog.Logger) *SerialReleaser {
	return &SerialReleaser{Baud: baud, Dial: OpenSerial, Logger: logger}
}

// Release opens port, drains pending output, writes M22 and reads the reply.
func (s *SerialReleaser) Release(ctx context.Context, port string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	baud := s.Baud
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	conn, err := s.Dial(port, baud)
	if err != nil {
		return err
	}

	defer func() {
		_ = conn.Close()
	}()

	if err := conn.SetReadTimeout(SerialReadTimeout); err != nil {
		return fmt.Errorf("set read timeout on %s: %w", port, err)
	}

	if pending := readAvailable(conn); pending != "" {
		s.Logger.Debug("serial pending output", "port", port, "data", pending)
	}

	if _, err := io.WriteString(conn, releaseCardCommand); err != nil {
		return fmt.Errorf("write release command to %s: %w", port, err)
	}

	s.Logger.Info("sent release command", "port", port, "reply", readAvailable(conn))

	return nil
}

// readAvailable returns whatever arrives within one read timeout.
// go.bug.st/serial reports a timeout as a zero-length read.
func readAvailable(conn SerialPort) string {
	buf := make([]byte, serialReadSize)

	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return ""
	}

	return strings.TrimSpace(string(buf[:n]))
}
