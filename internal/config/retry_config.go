// Package config defines retry and rate governor configuration.
package config

import (
	"time"
)

// RetryConfig holds the failover driver settings.
type RetryConfig struct {
	// FailoverEnabled selects the 2×keys attempt budget; false means a single attempt.
	FailoverEnabled bool
	// DowngradeEnabled allows one substitution to FallbackModel.
	DowngradeEnabled bool
	FallbackModel    string
	// AttemptTimeout bounds a single upstream call.
	AttemptTimeout time.Duration
	// InitialInterval and MaxInterval bound the pause between attempts.
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// GovernorConfig holds the rate governor settings.
type GovernorConfig struct {
	Ceiling       int
	DecayAmount   int
	DecayInterval time.Duration
	ResetInterval time.Duration
	ThrottleDelay time.Duration
}

// GetRetryConfig returns the retry configuration.
// In test environments the pauses are shortened for fast test execution.
func (c Config) GetRetryConfig() RetryConfig {
	rc := RetryConfig{
		FailoverEnabled:  c.FailoverEnabled,
		DowngradeEnabled: c.ModelDowngradeEnabled,
		FallbackModel:    c.FallbackModel,
		AttemptTimeout:   c.AttemptTimeout,
		InitialInterval:  c.RetryInitialInterval,
		MaxInterval:      c.RetryMaxInterval,
	}
	if c.IsTest() {
		rc.InitialInterval = 10 * time.Millisecond
		rc.MaxInterval = 20 * time.Millisecond
	}
	return rc
}

// GetGovernorConfig returns the rate governor configuration.
func (c Config) GetGovernorConfig() GovernorConfig {
	gc := GovernorConfig{
		Ceiling:       c.RateCeiling,
		DecayAmount:   c.RateDecayAmount,
		DecayInterval: c.RateDecayInterval,
		ResetInterval: c.RateResetInterval,
		ThrottleDelay: c.RateThrottleDelay,
	}
	if c.IsTest() {
		gc.ThrottleDelay = 10 * time.Millisecond
	}
	return gc
}
