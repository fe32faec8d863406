package rkc

import "time"

// Transport is the byte-oriented channel a Session drives. Implementations
// wrap the physical line (see the serial package); the protocol core never
// opens or configures the port itself.
//
// Transport is not goroutine-safe. The Session serializes all access,
// consistent with the half-duplex link.
type Transport interface {
	// Write sends all of p to the line, returning a transport-level error
	// on failure.
	Write(p []byte) error

	// Read blocks for up to timeout and returns the bytes received: either
	// a complete frame up to its ETX+BCC boundary, or whatever arrived
	// before the line went idle (e.g. a single ACK, NAK or EOT).
	//
	// Read returns ErrReadTimeout when no byte at all arrived within
	// timeout. Implementations must not buffer partial frames across
	// calls: each call returns exactly the bytes of this exchange.
	Read(timeout time.Duration) ([]byte, error)
}
