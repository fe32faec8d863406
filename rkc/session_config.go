package rkc

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-rkc/logger"
)

// Default session parameters.
const (
	// DefaultResponseTimeout bounds the wait for a controller response.
	DefaultResponseTimeout = 3 * time.Second

	// DefaultRetryLimit is the maximum number of NAK/resend cycles per
	// transaction. The hardware protocol permits indefinite retries; this
	// implementation bounds them deliberately.
	DefaultRetryLimit = 3
)

// Parameter range limits.
const (
	MinResponseTimeout = 100 * time.Millisecond
	MaxResponseTimeout = 60 * time.Second

	MaxRetryLimit = 31
)

// SessionConfig holds all configuration for a link session bound to one
// controller address.
type SessionConfig struct {
	// address is the two-digit decimal controller address, constant for
	// the session's lifetime.
	address Address

	// responseTimeout bounds the wait for the first response bytes of an
	// exchange.
	responseTimeout time.Duration

	// chainTimeout bounds the wait for subsequent frames of a chained
	// poll (after ACK). Defaults to responseTimeout.
	chainTimeout time.Duration

	// retryLimit is the maximum number of NAK/resend cycles per
	// transaction.
	retryLimit int

	logger logger.Logger
}

// NewSessionConfig creates a session configuration for the given controller
// address. opts are functional options applied in order; see With* functions.
func NewSessionConfig(address string, opts ...SessionOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		address:         Address(address),
		responseTimeout: DefaultResponseTimeout,
		retryLimit:      DefaultRetryLimit,
		logger:          logger.GetLogger(),
	}

	if err := cfg.address.validate(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.chainTimeout == 0 {
		cfg.chainTimeout = cfg.responseTimeout
	}

	return cfg, nil
}

// --- Getters ---

// Address returns the two-digit controller address.
func (cfg *SessionConfig) Address() Address { return cfg.address }

// ResponseTimeout returns the response timeout.
func (cfg *SessionConfig) ResponseTimeout() time.Duration { return cfg.responseTimeout }

// ChainTimeout returns the timeout for chained poll frames.
func (cfg *SessionConfig) ChainTimeout() time.Duration { return cfg.chainTimeout }

// RetryLimit returns the maximum number of retries per transaction.
func (cfg *SessionConfig) RetryLimit() int { return cfg.retryLimit }

// GetLogger returns the configured logger.
func (cfg *SessionConfig) GetLogger() logger.Logger { return cfg.logger }

// --- SessionOption ---

// SessionOption is a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc func(*SessionConfig) error

func (f sessionOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithResponseTimeout sets the response timeout. Range 100ms–60s.
func WithResponseTimeout(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d < MinResponseTimeout || d > MaxResponseTimeout {
			return fmt.Errorf("rkc: response timeout %v out of range [%v, %v]", d, MinResponseTimeout, MaxResponseTimeout)
		}
		cfg.responseTimeout = d

		return nil
	})
}

// WithChainTimeout sets the timeout for subsequent frames of a chained poll.
// Defaults to the response timeout.
func WithChainTimeout(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d < MinResponseTimeout || d > MaxResponseTimeout {
			return fmt.Errorf("rkc: chain timeout %v out of range [%v, %v]", d, MinResponseTimeout, MaxResponseTimeout)
		}
		cfg.chainTimeout = d

		return nil
	})
}

// WithRetryLimit sets the maximum number of retries per transaction.
// Range 0–31.
func WithRetryLimit(n int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if n < 0 || n > MaxRetryLimit {
			return fmt.Errorf("rkc: retry limit %d out of range [0, %d]", n, MaxRetryLimit)
		}
		cfg.retryLimit = n

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("rkc: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
