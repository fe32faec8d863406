package rkc

import "errors"

// Sentinel errors for the X3.28 polling/selecting protocol.
var (
	// Codec errors.
	ErrMalformedFrame    = errors.New("rkc: malformed frame")
	ErrChecksumMismatch  = errors.New("rkc: BCC checksum mismatch")
	ErrInvalidAddress    = errors.New("rkc: invalid controller address")
	ErrInvalidIdentifier = errors.New("rkc: invalid identifier")
	ErrInvalidMemoryArea = errors.New("rkc: invalid memory area")
	ErrInvalidData       = errors.New("rkc: invalid frame data")

	// Transaction errors.
	ErrNoResponse         = errors.New("rkc: no response within timeout")
	ErrIdentifierRejected = errors.New("rkc: identifier rejected by controller")
	ErrLinkFailure        = errors.New("rkc: link failure, retry limit exceeded")
	ErrSessionClosed      = errors.New("rkc: session closed")

	// ErrReadTimeout is returned by a Transport when no byte arrived before
	// the read deadline. The Session maps it to ErrNoResponse.
	ErrReadTimeout = errors.New("rkc: transport read timeout")
)
