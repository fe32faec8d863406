package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-rkc/rkc"
)

// scriptedLine is an in-memory rkc.Transport: each Read pops the next
// queued controller response.
type scriptedLine struct {
	writes    [][]byte
	responses [][]byte
}

func (l *scriptedLine) Write(p []byte) error {
	buf := make([]byte, len(p))
	copy(buf, p)
	l.writes = append(l.writes, buf)

	return nil
}

func (l *scriptedLine) Read(timeout time.Duration) ([]byte, error) {
	if len(l.responses) == 0 {
		return nil, rkc.ErrReadTimeout
	}

	rsp := l.responses[0]
	l.responses = l.responses[1:]

	return rsp, nil
}

func (l *scriptedLine) queueFrame(identifier, data string) {
	frame := []byte{rkc.STX}
	frame = append(frame, identifier...)
	frame = append(frame, data...)
	frame = append(frame, rkc.ETX)
	frame = append(frame, rkc.ComputeBCC(frame[1:]))
	l.responses = append(l.responses, frame)
}

func (l *scriptedLine) queueByte(b byte) {
	l.responses = append(l.responses, []byte{b})
}

func newTestController(t *testing.T) (*Controller, *scriptedLine) {
	t.Helper()

	cfg, err := rkc.NewSessionConfig("01", rkc.WithResponseTimeout(rkc.MinResponseTimeout))
	require.NoError(t, err)

	line := &scriptedLine{}

	return New(rkc.NewSession(line, cfg), nil), line
}

func TestController_ReadMeasuredValue(t *testing.T) {
	ctrl, line := newTestController(t)
	line.queueFrame("M1", "00100.0")

	v, err := ctrl.ReadMeasuredValue()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v, 1e-9)
	assert.True(t, ctrl.LinkUp())

	r, ok := ctrl.Reading("M1")
	require.True(t, ok)
	assert.Equal(t, "00100.0", r.Raw)
	assert.InDelta(t, 100.0, r.Value, 1e-9)
}

func TestController_ReadModelCode(t *testing.T) {
	ctrl, line := newTestController(t)
	line.queueFrame("ID", "FB400-01-1N1N5-NNNNN/Y          ")

	model, err := ctrl.ReadModelCode()
	require.NoError(t, err)
	assert.Equal(t, "FB400-01-1N1N5-NNNNN/Y", model)
}

func TestController_WriteSetpoint(t *testing.T) {
	ctrl, line := newTestController(t)
	line.queueByte(rkc.ACK)

	require.NoError(t, ctrl.WriteSetpoint(-150.0))

	// The data frame carries the documented fixed-width form.
	want := []byte("\x02S1-0150.0\x03V")
	require.Len(t, line.writes, 3)
	assert.Equal(t, want, line.writes[1])

	r, ok := ctrl.Reading("S1")
	require.True(t, ok)
	assert.Equal(t, "-0150.0", r.Raw)
}

func TestController_RefreshStatus(t *testing.T) {
	ctrl, line := newTestController(t)
	line.queueFrame("M1", "00100.0")
	line.queueFrame("S1", "00150.0")
	line.queueFrame("O1", "00042.5")

	status, err := ctrl.RefreshStatus()
	require.NoError(t, err)
	assert.True(t, status.LinkUp)

	require.NotNil(t, status.Measured)
	require.NotNil(t, status.Setpoint)
	require.NotNil(t, status.Output)
	assert.InDelta(t, 100.0, *status.Measured, 1e-9)
	assert.InDelta(t, 150.0, *status.Setpoint, 1e-9)
	assert.InDelta(t, 42.5, *status.Output, 1e-9)
	assert.False(t, status.At.IsZero())
}

func TestController_RefreshStatus_LinkDownKeepsCache(t *testing.T) {
	ctrl, line := newTestController(t)
	line.queueFrame("M1", "00100.0")
	line.queueFrame("S1", "00150.0")
	line.queueFrame("O1", "00042.5")

	_, err := ctrl.RefreshStatus()
	require.NoError(t, err)

	// Silent line on the next refresh: the snapshot keeps the previous
	// readings but reports the link as down.
	status, err := ctrl.RefreshStatus()
	require.ErrorIs(t, err, rkc.ErrNoResponse)
	assert.False(t, status.LinkUp)
	assert.False(t, ctrl.LinkUp())

	require.NotNil(t, status.Measured)
	assert.InDelta(t, 100.0, *status.Measured, 1e-9)
}

func TestController_RefreshStatus_SkipsUnparsableReading(t *testing.T) {
	ctrl, line := newTestController(t)
	line.queueFrame("M1", "0010x.0")
	line.queueFrame("S1", "00150.0")
	line.queueFrame("O1", "00042.5")

	status, err := ctrl.RefreshStatus()
	require.NoError(t, err)

	assert.Nil(t, status.Measured, "garbled reading is dropped, not cached")
	require.NotNil(t, status.Setpoint)
	assert.InDelta(t, 150.0, *status.Setpoint, 1e-9)
}

func TestController_StatusBeforeAnyPoll(t *testing.T) {
	ctrl, _ := newTestController(t)

	status := ctrl.Status()
	assert.False(t, status.LinkUp)
	assert.Nil(t, status.Measured)
	assert.Nil(t, status.Setpoint)
	assert.Nil(t, status.Output)
}
