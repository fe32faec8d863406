package rkc

// LinkState is the state of the data link during a transaction. It exists
// only for a transaction's lifetime and is owned exclusively by the Session;
// between transactions the link is always Idle.
type LinkState int32

const (
	// IdleState means no transaction is open; the link is released.
	IdleState LinkState = iota

	// LinkedState means the link has been initialized with EOT (and, for a
	// select, the address) but the request is not yet complete.
	LinkedState

	// AwaitingResponseState means a polling sequence was sent and the
	// session is waiting for a data frame.
	AwaitingResponseState

	// AwaitingAckState means a selecting frame was sent and the session is
	// waiting for ACK or NAK.
	AwaitingAckState
)

func (s LinkState) String() string {
	switch s {
	case IdleState:
		return "idle"
	case LinkedState:
		return "linked"
	case AwaitingResponseState:
		return "awaiting-response"
	case AwaitingAckState:
		return "awaiting-ack"
	default:
		return "unknown"
	}
}
