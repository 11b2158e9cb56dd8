package core

import (
	"fmt"
	"math"
	"time"

	"github.com/pelletier/go-toml"
)

var config *toml.Tree

// LoadConfig loads runtime tuning parameters from a TOML file. The keys
// read in this module are the log level (InitializeLogger) and, in
// cmd/svsdemo, the retransmission/suppression periods, wire size cap,
// per-entry overhead estimate, and HMAC key. A file that cannot be read
// or parsed is returned as an error wrapping ErrConfig.
func LoadConfig(file string) error {
	tree, err := toml.LoadFile(file)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	config = tree
	return nil
}

// GetConfigIntDefault returns the integer configuration value at key,
// or def if absent or of the wrong type.
func GetConfigIntDefault(key string, def int) int {
	if config == nil {
		return def
	}
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	if val, ok := valRaw.(int64); ok && val >= math.MinInt32 && val <= math.MaxInt32 {
		return int(val)
	}
	return def
}

// GetConfigStringDefault returns the string configuration value at key,
// or def if absent or of the wrong type.
func GetConfigStringDefault(key string, def string) string {
	if config == nil {
		return def
	}
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	if val, ok := valRaw.(string); ok {
		return val
	}
	return def
}

// GetConfigDurationDefault returns a millisecond-valued integer
// configuration entry at key as a time.Duration, or def if absent.
func GetConfigDurationDefault(key string, def time.Duration) time.Duration {
	ms := GetConfigIntDefault(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
