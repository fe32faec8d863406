package rkc

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for one link session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// PollCount indicates the number of completed poll transactions.
	PollCount atomic.Uint64
	// SelectCount indicates the number of completed select transactions.
	SelectCount atomic.Uint64
	// RetryCount indicates the total number of in-transaction retries.
	RetryCount atomic.Uint64
	// NakSentCount indicates the number of NAK bytes sent for invalid frames.
	NakSentCount atomic.Uint64
	// TimeoutCount indicates the number of response timeouts.
	TimeoutCount atomic.Uint64
	// ChecksumErrCount indicates the number of received frames rejected
	// for a BCC mismatch.
	ChecksumErrCount atomic.Uint64
	// RejectCount indicates the number of transactions the controller
	// refused with EOT.
	RejectCount atomic.Uint64
}

func (m *SessionMetrics) incPollCount() {
	m.PollCount.Add(1)
}

func (m *SessionMetrics) incSelectCount() {
	m.SelectCount.Add(1)
}

func (m *SessionMetrics) incRetryCount() {
	m.RetryCount.Add(1)
}

func (m *SessionMetrics) incNakSentCount() {
	m.NakSentCount.Add(1)
}

func (m *SessionMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

func (m *SessionMetrics) incChecksumErrCount() {
	m.ChecksumErrCount.Add(1)
}

func (m *SessionMetrics) incRejectCount() {
	m.RejectCount.Add(1)
}
