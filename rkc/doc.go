// Package rkc implements the RKC ANSI X3.28-1976 polling/selecting protocol
// used by FB100/400/900 series temperature controllers over a half-duplex
// serial link.
//
// # Protocol Overview
//
// The host drives every exchange. A poll (read) and a select (write) both run
// over a short-lived data link delimited by single-byte control characters:
//
//   - EOT (0x04) — initializes or terminates the data link
//   - ENQ (0x05) — ends a polling sequence, requesting data
//   - ACK (0x06) — correct reception; on a poll, requests the next frame
//   - NAK (0x15) — incorrect reception, requesting retransmission
//   - STX (0x02) / ETX (0x03) — delimit a data frame
//
// A data frame carries a two-character identifier naming a controller
// parameter (e.g. M1 = measured value, S1 = setpoint) followed by its value
// as fixed-width ASCII decimal, and is protected by a Block Check Character:
// the exclusive-OR of every byte after STX through ETX inclusive.
//
// # Layering
//
// [EncodePoll], [EncodeSelect] and [DecodeResponse] are pure byte-level
// codec functions. [Session] drives one transaction at a time over a
// [Transport]: it sends the request, validates the reply, recovers from
// checksum and framing errors with a bounded NAK/retry cycle, and terminates
// every transaction with EOT so the link is never left half-open.
//
// # Cancellation
//
// Session calls block for at most the configured response timeout per
// exchange. There is no mid-flight cancellation: a byte already on the
// serial line cannot be recalled, so an in-progress transaction always runs
// to a terminal state (value, typed error, or timeout) before returning.
package rkc
