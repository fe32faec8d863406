// Package config loads the daemon configuration from a YAML file, with
// environment-variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full daemon configuration.
type Config struct {
	Serial   SerialConfig   `mapstructure:"serial"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Polling  PollingConfig  `mapstructure:"polling"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// SerialConfig describes the physical line.
type SerialConfig struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baudRate"`
	Parity   string `mapstructure:"parity"`
	StopBits int    `mapstructure:"stopBits"`
}

// ProtocolConfig describes the link-session parameters.
type ProtocolConfig struct {
	// Address is the two-digit decimal controller address.
	Address                string `mapstructure:"address"`
	ResponseTimeoutSeconds int    `mapstructure:"responseTimeoutSeconds"`
	MaxRetries             int    `mapstructure:"maxRetries"`
}

// PollingConfig describes the background poll loop and its history log.
type PollingConfig struct {
	IntervalSeconds int    `mapstructure:"intervalSeconds"`
	HistoryFile     string `mapstructure:"historyFile"`
	MaxSizeMB       int    `mapstructure:"maxSizeMB"`
	MaxBackups      int    `mapstructure:"maxBackups"`
}

// HTTPConfig describes the REST listener.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggerConfig describes log output.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"filePath"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

// Addr returns the REST listener address as "host:port".
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration file at path. Environment variables
// override file values, with dots replaced by underscores
// (e.g. SERIAL_PORT overrides serial.port).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.baudRate", 19200)
	v.SetDefault("serial.parity", "none")
	v.SetDefault("serial.stopBits", 1)

	v.SetDefault("protocol.address", "00")
	v.SetDefault("protocol.responseTimeoutSeconds", 3)
	v.SetDefault("protocol.maxRetries", 3)

	v.SetDefault("polling.intervalSeconds", 10)
	v.SetDefault("polling.historyFile", "logs/rkc_data.csv")
	v.SetDefault("polling.maxSizeMB", 50)
	v.SetDefault("polling.maxBackups", 5)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8000)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.maxSizeMB", 20)
	v.SetDefault("logger.maxBackups", 3)
	v.SetDefault("logger.maxAgeDays", 30)
}

func (c *Config) validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("config: serial.port is required")
	}
	if len(c.Protocol.Address) != 2 {
		return fmt.Errorf("config: protocol.address %q must be exactly 2 decimal digits", c.Protocol.Address)
	}
	if c.Protocol.ResponseTimeoutSeconds <= 0 {
		return fmt.Errorf("config: protocol.responseTimeoutSeconds must be positive")
	}
	if c.Protocol.MaxRetries < 0 {
		return fmt.Errorf("config: protocol.maxRetries must not be negative")
	}
	if c.Polling.IntervalSeconds <= 0 {
		return fmt.Errorf("config: polling.intervalSeconds must be positive")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: http.port %d out of range [1, 65535]", c.HTTP.Port)
	}

	return nil
}
