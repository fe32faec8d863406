package rkc

import (
	"bytes"
	"fmt"
)

// Transmission control characters (7-bit ASCII, fixed by ANSI X3.28).
//
// Control recognition is a single-byte equality check against these values;
// no other byte is treated as a control character even if it appears inside
// a payload.
const (
	// STX (Start of Text) opens a data frame.
	STX byte = 0x02

	// ETX (End of Text) closes a data frame; the BCC follows it.
	ETX byte = 0x03

	// EOT (End of Transmission) initializes or terminates the data link.
	EOT byte = 0x04

	// ENQ (Enquiry) terminates a polling sequence, requesting data.
	ENQ byte = 0x05

	// ACK (Acknowledge) confirms correct reception. During a poll it also
	// requests the next identifier's frame on the same link.
	ACK byte = 0x06

	// NAK (Negative Acknowledge) reports incorrect reception and requests
	// retransmission of the same frame.
	NAK byte = 0x15
)

// Frame is a decoded controller data frame: on the wire it is
// [STX][identifier(2)][data(7 or 32)][ETX][BCC].
type Frame struct {
	// Identifier is the two-character code as received.
	Identifier string
	// Data is the payload between the identifier and ETX: fixed-width
	// ASCII decimal, not zero-suppressed, possibly containing '-' and '.'.
	Data string
}

// EncodePoll builds the full polling sequence for one identifier:
//
//	[EOT][address(2)][memory area(2)?][identifier(2)][ENQ]
//
// The leading EOT initializes the data link, so the returned bytes are the
// complete request a host writes from the Idle state.
func EncodePoll(addr Address, id Identifier, area MemoryArea) ([]byte, error) {
	if err := addr.validate(); err != nil {
		return nil, err
	}
	if err := id.validate(); err != nil {
		return nil, err
	}
	if err := area.validate(); err != nil {
		return nil, err
	}

	seq := make([]byte, 0, 1+len(addr)+len(area)+len(id.Code)+1)
	seq = append(seq, EOT)
	seq = append(seq, addr...)
	seq = append(seq, area...)
	seq = append(seq, id.Code...)
	seq = append(seq, ENQ)

	return seq, nil
}

// EncodeSelect builds a selecting data frame:
//
//	[STX][memory area(2)?][identifier(2)][data][ETX][BCC]
//
// data is padded to the identifier's expected width via PadValue and the
// BCC covers every byte after STX through ETX inclusive. The link
// initialization (EOT and address) is not part of the frame; the Session
// sends it separately so that a NAK retransmits the frame alone.
func EncodeSelect(id Identifier, data string, area MemoryArea) ([]byte, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	if err := area.validate(); err != nil {
		return nil, err
	}

	padded, err := PadValue(data, id.DataLen)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 1+len(area)+len(id.Code)+len(padded)+2)
	frame = append(frame, STX)
	frame = append(frame, area...)
	frame = append(frame, id.Code...)
	frame = append(frame, padded...)
	frame = append(frame, ETX)
	frame = append(frame, ComputeBCC(frame[1:]))

	return frame, nil
}

// PadValue left-pads data with '0' to the given width, keeping a leading
// '-' in front of the padding ("-150.0" → "-0150.0" at width 7).
// It fails with ErrInvalidData if data is wider than width or contains a
// byte outside printable 7-bit ASCII.
func PadValue(data string, width int) (string, error) {
	if len(data) > width {
		return "", fmt.Errorf("%w: %q exceeds width %d", ErrInvalidData, data, width)
	}
	for i := 0; i < len(data); i++ {
		if data[i] < 0x20 || data[i] > 0x7E {
			return "", fmt.Errorf("%w: non-printable byte 0x%02X at index %d", ErrInvalidData, data[i], i)
		}
	}

	if len(data) == width {
		return data, nil
	}

	pad := width - len(data)
	if len(data) > 0 && data[0] == '-' {
		return "-" + string(zeros(pad)) + data[1:], nil
	}

	return string(zeros(pad)) + data, nil
}

func zeros(n int) []byte {
	return bytes.Repeat([]byte{'0'}, n)
}

// DecodeResponse parses a controller data frame from raw bytes.
//
// It expects [STX][identifier(2)][data(7 or 32)][ETX][BCC] and tolerates
// leading noise before STX and trailing bytes after the BCC. It fails with
// ErrMalformedFrame on missing markers or an inconsistent data length, and
// with ErrChecksumMismatch when the recomputed BCC disagrees with the
// received byte. The input is never mutated.
func DecodeResponse(raw []byte) (Frame, error) {
	stx := bytes.IndexByte(raw, STX)
	if stx < 0 {
		return Frame{}, fmt.Errorf("%w: missing STX", ErrMalformedFrame)
	}

	etx := bytes.IndexByte(raw[stx:], ETX)
	if etx < 0 {
		return Frame{}, fmt.Errorf("%w: missing ETX", ErrMalformedFrame)
	}
	etx += stx

	if etx+1 >= len(raw) {
		return Frame{}, fmt.Errorf("%w: missing BCC after ETX", ErrMalformedFrame)
	}

	// Identifier (2) plus payload must sit between STX and ETX.
	bodyLen := etx - stx - 1
	if dataLen := bodyLen - 2; dataLen != DataLen && dataLen != ModelDataLen {
		return Frame{}, fmt.Errorf("%w: data length %d, want %d or %d",
			ErrMalformedFrame, bodyLen-2, DataLen, ModelDataLen)
	}

	// BCC spans the byte after STX through ETX inclusive.
	span := raw[stx+1 : etx+1]
	wireBCC := raw[etx+1]
	if !VerifyBCC(span, wireBCC) {
		return Frame{}, fmt.Errorf("%w: wire=0x%02X, computed=0x%02X",
			ErrChecksumMismatch, wireBCC, ComputeBCC(span))
	}

	return Frame{
		Identifier: string(raw[stx+1 : stx+3]),
		Data:       string(raw[stx+3 : etx]),
	}, nil
}
