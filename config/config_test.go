package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rkc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB0
  baudRate: 9600
  parity: even
  stopBits: 2
protocol:
  address: "02"
  responseTimeoutSeconds: 5
  maxRetries: 7
polling:
  intervalSeconds: 30
  historyFile: /var/log/rkc/data.csv
  maxSizeMB: 10
  maxBackups: 2
http:
  host: 127.0.0.1
  port: 9000
logger:
  level: debug
  filePath: /var/log/rkc/rkc.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, "even", cfg.Serial.Parity)
	assert.Equal(t, 2, cfg.Serial.StopBits)

	assert.Equal(t, "02", cfg.Protocol.Address)
	assert.Equal(t, 5, cfg.Protocol.ResponseTimeoutSeconds)
	assert.Equal(t, 7, cfg.Protocol.MaxRetries)

	assert.Equal(t, 30, cfg.Polling.IntervalSeconds)
	assert.Equal(t, "/var/log/rkc/data.csv", cfg.Polling.HistoryFile)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr())

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/var/log/rkc/rkc.log", cfg.Logger.FilePath)
}

func TestLoad_Defaults(t *testing.T) {
	// Only the required fields; everything else falls back to defaults.
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 19200, cfg.Serial.BaudRate)
	assert.Equal(t, "none", cfg.Serial.Parity)
	assert.Equal(t, 1, cfg.Serial.StopBits)

	assert.Equal(t, "00", cfg.Protocol.Address)
	assert.Equal(t, 3, cfg.Protocol.ResponseTimeoutSeconds)
	assert.Equal(t, 3, cfg.Protocol.MaxRetries)

	assert.Equal(t, 10, cfg.Polling.IntervalSeconds)
	assert.Equal(t, "logs/rkc_data.csv", cfg.Polling.HistoryFile)

	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Addr())
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"missing serial port",
			`
protocol:
  address: "01"
`,
		},
		{
			"bad address length",
			`
serial:
  port: /dev/ttyUSB0
protocol:
  address: "001"
`,
		},
		{
			"zero response timeout",
			`
serial:
  port: /dev/ttyUSB0
protocol:
  responseTimeoutSeconds: 0
`,
		},
		{
			"negative retries",
			`
serial:
  port: /dev/ttyUSB0
protocol:
  maxRetries: -1
`,
		},
		{
			"zero poll interval",
			`
serial:
  port: /dev/ttyUSB0
polling:
  intervalSeconds: 0
`,
		},
		{
			"port out of range",
			`
serial:
  port: /dev/ttyUSB0
http:
  port: 70000
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
