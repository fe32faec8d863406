// Package serial implements the rkc.Transport contract over a physical
// serial port using go.bug.st/serial.
//
// FB-series controllers ship with 8 data bits, no parity and 1 stop bit at
// 19200 baud by default; all four parameters are configurable to match the
// controller's communication settings.
package serial

import (
	"fmt"
	"time"

	bugst "go.bug.st/serial"

	"github.com/arloliu/go-rkc/logger"
	"github.com/arloliu/go-rkc/rkc"
)

// DefaultBaudRate is the FB-series factory default.
const DefaultBaudRate = 19200

// DefaultIdleTimeout is the inter-chunk gap after which a partially
// received response is considered finished. At 19200 baud a byte takes
// roughly half a millisecond, so 50ms of silence means the controller is
// done transmitting.
const DefaultIdleTimeout = 50 * time.Millisecond

// Port is a serial-line implementation of [rkc.Transport].
//
// Port is not goroutine-safe; the owning Session serializes access.
type Port struct {
	port        bugst.Port
	name        string
	idleTimeout time.Duration
	logger      logger.Logger
}

var _ rkc.Transport = (*Port)(nil)

// Option is a functional option for Open.
type Option func(*openConfig) error

type openConfig struct {
	mode        bugst.Mode
	idleTimeout time.Duration
	logger      logger.Logger
}

// WithBaudRate sets the line speed. Default 19200.
func WithBaudRate(baud int) Option {
	return func(c *openConfig) error {
		if baud <= 0 {
			return fmt.Errorf("serial: invalid baud rate %d", baud)
		}
		c.mode.BaudRate = baud

		return nil
	}
}

// WithParity sets the parity from its config-file name: "none", "odd" or
// "even". Default none.
func WithParity(name string) Option {
	return func(c *openConfig) error {
		switch name {
		case "", "none":
			c.mode.Parity = bugst.NoParity
		case "odd":
			c.mode.Parity = bugst.OddParity
		case "even":
			c.mode.Parity = bugst.EvenParity
		default:
			return fmt.Errorf("serial: invalid parity %q", name)
		}

		return nil
	}
}

// WithStopBits sets the number of stop bits, 1 or 2. Default 1.
func WithStopBits(n int) Option {
	return func(c *openConfig) error {
		switch n {
		case 1:
			c.mode.StopBits = bugst.OneStopBit
		case 2:
			c.mode.StopBits = bugst.TwoStopBits
		default:
			return fmt.Errorf("serial: invalid stop bits %d", n)
		}

		return nil
	}
}

// WithIdleTimeout sets the inter-chunk idle gap that ends a read.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *openConfig) error {
		if d <= 0 {
			return fmt.Errorf("serial: idle timeout must be positive")
		}
		c.idleTimeout = d

		return nil
	}
}

// WithLogger sets the logger for the port.
func WithLogger(l logger.Logger) Option {
	return func(c *openConfig) error {
		if l == nil {
			return fmt.Errorf("serial: logger must not be nil")
		}
		c.logger = l

		return nil
	}
}

// Open opens the named serial port (e.g. "/dev/ttyUSB0" or "COM3") and
// drains any stale input so the first transaction starts from a silent line.
func Open(name string, opts ...Option) (*Port, error) {
	cfg := openConfig{
		mode: bugst.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   bugst.NoParity,
			StopBits: bugst.OneStopBit,
		},
		idleTimeout: DefaultIdleTimeout,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	port, err := bugst.Open(name, &cfg.mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}

	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()

		return nil, fmt.Errorf("serial: reset input buffer: %w", err)
	}

	cfg.logger.Info("serial: port opened",
		"port", name,
		"baudRate", cfg.mode.BaudRate,
	)

	return &Port{
		port:        port,
		name:        name,
		idleTimeout: cfg.idleTimeout,
		logger:      cfg.logger,
	}, nil
}

// Name returns the port name given to Open.
func (p *Port) Name() string { return p.name }

// Close closes the underlying serial port.
func (p *Port) Close() error {
	return p.port.Close()
}

// Write sends all of b to the line.
func (p *Port) Write(b []byte) error {
	for written := 0; written < len(b); {
		n, err := p.port.Write(b[written:])
		written += n

		if err != nil {
			return fmt.Errorf("serial: write: %w", err)
		}
	}

	return nil
}

// Read returns the bytes of one response: everything received up to an
// ETX+BCC boundary, a recognized single control byte, or an idle gap. It
// returns rkc.ErrReadTimeout when no byte at all arrived within timeout.
//
// Nothing is buffered across calls: bytes are read from the line only for
// the exchange in progress.
func (p *Port) Read(timeout time.Duration) ([]byte, error) {
	var out []byte

	chunk := make([]byte, 64)
	wait := timeout

	for {
		if err := p.port.SetReadTimeout(wait); err != nil {
			return nil, fmt.Errorf("serial: set read timeout: %w", err)
		}

		n, err := p.port.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("serial: read: %w", err)
		}

		if n == 0 {
			// Deadline expired with no new byte.
			if len(out) == 0 {
				return nil, rkc.ErrReadTimeout
			}

			// Line went idle after a partial response; hand back what
			// arrived and let the protocol layer judge it.
			return out, nil
		}

		out = append(out, chunk[:n]...)

		if responseComplete(out) {
			return out, nil
		}

		wait = p.idleTimeout
	}
}

// responseComplete reports whether buf already holds a full response: a
// single handshake byte, or a data frame with its BCC after ETX.
func responseComplete(buf []byte) bool {
	if len(buf) == 1 {
		switch buf[0] {
		case rkc.ACK, rkc.NAK, rkc.EOT:
			return true
		}
	}

	for i, b := range buf {
		if b == rkc.ETX {
			return len(buf) >= i+2
		}
	}

	return false
}
