package rkc

import (
	"testing"
	"time"

	"github.com/arloliu/go-rkc/logger"
)

// fakeTransport is a scripted Transport: each Read pops the next queued
// response, and every Write is recorded for inspection. An empty queue
// behaves like a silent line (ErrReadTimeout).
type fakeTransport struct {
	writes    [][]byte
	responses []fakeResponse
}

type fakeResponse struct {
	data []byte
	err  error
}

func (f *fakeTransport) Write(p []byte) error {
	buf := make([]byte, len(p))
	copy(buf, p)
	f.writes = append(f.writes, buf)

	return nil
}

func (f *fakeTransport) Read(timeout time.Duration) ([]byte, error) {
	if len(f.responses) == 0 {
		return nil, ErrReadTimeout
	}

	rsp := f.responses[0]
	f.responses = f.responses[1:]

	return rsp.data, rsp.err
}

// queue appends a successful response.
func (f *fakeTransport) queue(data ...byte) {
	f.responses = append(f.responses, fakeResponse{data: data})
}

// lastWrite returns the most recent write, failing the test if none happened.
func (f *fakeTransport) lastWrite(t *testing.T) []byte {
	t.Helper()

	if len(f.writes) == 0 {
		t.Fatal("no bytes written")
	}

	return f.writes[len(f.writes)-1]
}

// countWrites returns how many recorded writes equal the given bytes.
func (f *fakeTransport) countWrites(b []byte) int {
	n := 0
	for _, w := range f.writes {
		if string(w) == string(b) {
			n++
		}
	}

	return n
}

// newTestSession creates a Session over a fresh fakeTransport with short
// timeouts and the default retry limit.
func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *fakeTransport) {
	t.Helper()

	defaults := []SessionOption{
		WithResponseTimeout(MinResponseTimeout),
		WithLogger(logger.GetLogger()),
	}

	cfg, err := NewSessionConfig("01", append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestSession: %v", err)
	}

	ft := &fakeTransport{}

	return NewSession(ft, cfg), ft
}

// controllerFrame builds the bytes a controller transmits for one data
// frame: [STX][identifier][data][ETX][BCC].
func controllerFrame(identifier, data string) []byte {
	frame := []byte{STX}
	frame = append(frame, identifier...)
	frame = append(frame, data...)
	frame = append(frame, ETX)
	frame = append(frame, ComputeBCC(frame[1:]))

	return frame
}
