package rkc

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-rkc/logger"
)

// Value is one identifier/data pair returned by a poll.
type Value struct {
	// Identifier is the two-character code as received.
	Identifier string
	// Data is the raw fixed-width payload.
	Data string
}

// Session drives polling and selecting transactions against one controller
// address over a Transport.
//
// The link is strictly half-duplex: a Session executes one transaction at a
// time and serializes concurrent callers, which therefore complete in
// issuance order. Link state exists only while a transaction is open; every
// transaction ends with the link back in Idle, with EOT sent by one side or
// the other, regardless of outcome.
type Session struct {
	cfg       *SessionConfig
	transport Transport
	logger    logger.Logger

	// mu serializes transactions. The session is not reentrant
	// mid-transaction.
	mu sync.Mutex

	state  atomic.Int32
	closed atomic.Bool

	metrics SessionMetrics
}

// NewSession creates a Session bound to the given transport and
// configuration.
func NewSession(t Transport, cfg *SessionConfig) *Session {
	return &Session{
		cfg:       cfg,
		transport: t,
		logger:    cfg.GetLogger().With("addr", string(cfg.Address())),
	}
}

// State returns the current link state.
func (s *Session) State() LinkState {
	return LinkState(s.state.Load())
}

// Metrics returns the session's metrics counters.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// Close marks the session closed. Subsequent Read/Write calls fail with
// ErrSessionClosed. Close does not touch the transport; the owner of the
// physical line closes it.
func (s *Session) Close() {
	s.closed.Store(true)
}

// Read polls the controller for one identifier's current value and returns
// the raw fixed-width payload.
func (s *Session) Read(id Identifier, area MemoryArea) (string, error) {
	values, err := s.ReadChain([]Identifier{id}, area)
	if err != nil {
		return "", err
	}

	return values[0].Data, nil
}

// ReadChain polls the controller for len(ids) values over a single data
// link. The first identifier is requested with a polling sequence; each
// further frame is requested by acknowledging the previous one with ACK
// (the protocol's multi-identifier read). The session sends ACK only
// because the caller asked for a further frame here — a single-identifier
// read always terminates with EOT instead.
//
// The returned values carry the identifier codes as the controller sent
// them, in reception order.
func (s *Session) ReadChain(ids []Identifier, area MemoryArea) ([]Value, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no identifiers requested", ErrInvalidIdentifier)
	}

	seq, err := EncodePoll(s.cfg.Address(), ids[0], area)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrSessionClosed
	}

	values, err := s.poll(seq, len(ids))
	if err != nil {
		return nil, err
	}

	s.metrics.incPollCount()

	return values, nil
}

// Write selects one identifier, delivering data to the controller. data is
// padded to the identifier's expected width before transmission.
func (s *Session) Write(id Identifier, data string, area MemoryArea) error {
	frame, err := EncodeSelect(id, data, area)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	if err := s.selectSend(frame); err != nil {
		return err
	}

	s.metrics.incSelectCount()

	return nil
}

// --- Poll transaction ---

// poll runs one polling transaction: writes the polling sequence (whose
// leading EOT initializes the link), then collects want frames, validating
// each and recovering from invalid ones with NAK up to the retry limit.
func (s *Session) poll(seq []byte, want int) ([]Value, error) {
	s.state.Store(int32(LinkedState))

	if err := s.transport.Write(seq); err != nil {
		return nil, s.abort(fmt.Errorf("rkc: send polling sequence: %w", err))
	}

	s.state.Store(int32(AwaitingResponseState))

	values := make([]Value, 0, want)
	retries := 0
	timeout := s.cfg.ResponseTimeout()

	for {
		raw, err := s.transport.Read(timeout)
		if err != nil {
			if errors.Is(err, ErrReadTimeout) {
				s.metrics.incTimeoutCount()

				return nil, s.abort(fmt.Errorf("%w: awaiting data frame", ErrNoResponse))
			}

			return nil, s.abort(fmt.Errorf("rkc: transport read: %w", err))
		}

		// The controller terminates the link itself when it has nothing
		// to send: invalid identifier, data-type error, or no data.
		// Nothing further may be sent on a link the controller closed.
		if len(raw) == 1 && raw[0] == EOT {
			s.metrics.incRejectCount()
			s.state.Store(int32(IdleState))

			return nil, ErrIdentifierRejected
		}

		frame, derr := DecodeResponse(raw)
		if derr != nil {
			if errors.Is(derr, ErrChecksumMismatch) {
				s.metrics.incChecksumErrCount()
			}

			retries++
			if retries > s.cfg.RetryLimit() {
				return nil, s.abort(fmt.Errorf("%w: %d invalid frames: %w", ErrLinkFailure, retries, derr))
			}

			s.metrics.incRetryCount()
			s.metrics.incNakSentCount()
			s.logger.Debug("rkc: invalid frame, sending NAK",
				"retry", retries,
				"maxRetry", s.cfg.RetryLimit(),
				"error", derr,
			)

			// The controller re-sends the same frame in response to NAK.
			if err := s.transport.Write([]byte{NAK}); err != nil {
				return nil, s.abort(fmt.Errorf("rkc: send NAK: %w", err))
			}

			continue
		}

		values = append(values, Value{Identifier: frame.Identifier, Data: frame.Data})

		if len(values) == want {
			if err := s.sendEOT(); err != nil {
				return nil, err
			}

			return values, nil
		}

		// The caller asked for a further identifier on this link: ACK the
		// frame so the controller sends the next one.
		if err := s.transport.Write([]byte{ACK}); err != nil {
			return nil, s.abort(fmt.Errorf("rkc: send ACK: %w", err))
		}

		timeout = s.cfg.ChainTimeout()
	}
}

// --- Select transaction ---

// selectSend runs one selecting transaction: initializes the link with
// EOT and the selecting address, sends the data frame, and waits for the
// controller's verdict, resending on NAK up to the retry limit.
func (s *Session) selectSend(frame []byte) error {
	link := make([]byte, 0, 1+len(s.cfg.Address()))
	link = append(link, EOT)
	link = append(link, s.cfg.Address()...)

	if err := s.transport.Write(link); err != nil {
		return s.abort(fmt.Errorf("rkc: send selecting address: %w", err))
	}

	s.state.Store(int32(LinkedState))

	if err := s.transport.Write(frame); err != nil {
		return s.abort(fmt.Errorf("rkc: send data frame: %w", err))
	}

	s.state.Store(int32(AwaitingAckState))

	retries := 0

	for {
		raw, err := s.transport.Read(s.cfg.ResponseTimeout())
		if err != nil {
			if errors.Is(err, ErrReadTimeout) {
				s.metrics.incTimeoutCount()

				return s.abort(fmt.Errorf("%w: awaiting ACK", ErrNoResponse))
			}

			return s.abort(fmt.Errorf("rkc: transport read: %w", err))
		}

		switch {
		case len(raw) == 1 && raw[0] == ACK:
			return s.sendEOT()

		case len(raw) == 1 && raw[0] == EOT:
			// The controller refused the select (unknown or read-only
			// identifier) and closed the link itself.
			s.metrics.incRejectCount()
			s.state.Store(int32(IdleState))

			return ErrIdentifierRejected

		default:
			// NAK requests retransmission of the identical frame. Anything
			// else is line noise; the protocol's tolerance is to resend as
			// well, bounded by the same retry limit.
			retries++
			if retries > s.cfg.RetryLimit() {
				return s.abort(fmt.Errorf("%w: %d resends without ACK", ErrLinkFailure, retries))
			}

			s.metrics.incRetryCount()
			s.logger.Debug("rkc: no ACK, resending frame",
				"retry", retries,
				"maxRetry", s.cfg.RetryLimit(),
				"response", fmt.Sprintf("% X", raw),
			)

			if err := s.transport.Write(frame); err != nil {
				return s.abort(fmt.Errorf("rkc: resend data frame: %w", err))
			}
		}
	}
}

// --- Link termination ---

// sendEOT terminates the transaction normally: EOT released the link.
func (s *Session) sendEOT() error {
	err := s.transport.Write([]byte{EOT})
	s.state.Store(int32(IdleState))

	if err != nil {
		return fmt.Errorf("rkc: send EOT: %w", err)
	}

	return nil
}

// abort terminates a failed transaction: EOT is sent best-effort so the
// next transaction starts from a clean link, and the causing error is
// returned unchanged.
func (s *Session) abort(cause error) error {
	if err := s.transport.Write([]byte{EOT}); err != nil {
		s.logger.Warn("rkc: failed to send EOT on abort", "error", err)
	}

	s.state.Store(int32(IdleState))

	return cause
}
