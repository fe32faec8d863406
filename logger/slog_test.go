package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))

	return rec
}

func TestSlogLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, WithWriter(&buf))

	l.Info("port opened", "port", "/dev/ttyUSB0", "baudRate", 19200)

	rec := lastRecord(t, &buf)
	assert.Equal(t, "port opened", rec["msg"])
	assert.Equal(t, "/dev/ttyUSB0", rec["port"])
	assert.EqualValues(t, 19200, rec["baudRate"])
	assert.Contains(t, rec, "ts")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, WithWriter(&buf))

	l.Debug("suppressed")
	assert.Zero(t, buf.Len())

	l.SetLevel(DebugLevel)
	l.Debug("emitted")
	rec := lastRecord(t, &buf)
	assert.Equal(t, "emitted", rec["msg"])
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, WithWriter(&buf))

	child := l.With("addr", "01")
	child.Info("poll done")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "01", rec["addr"])

	// The parent is unaffected by the child's context.
	buf.Reset()
	l.Info("no context")
	rec = lastRecord(t, &buf)
	assert.NotContains(t, rec, "addr")
}

func TestSlogLogger_SharedLevelAcrossChildren(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, WithWriter(&buf))
	child := l.With("addr", "01")

	l.SetLevel(ErrorLevel)
	child.Info("suppressed")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetDefault(t *testing.T) {
	orig := GetLogger()
	defer SetDefault(orig)

	var buf bytes.Buffer
	SetDefault(NewSlog(InfoLevel, WithWriter(&buf)))

	Info("through the default")
	rec := lastRecord(t, &buf)
	assert.Equal(t, "through the default", rec["msg"])

	// nil is ignored rather than clearing the default.
	SetDefault(nil)
	assert.NotNil(t, GetLogger())
}
