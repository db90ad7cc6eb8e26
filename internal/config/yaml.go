// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	applog "specmon/internal/log"
)

// LoadConfig loads configuration from a YAML file at path. If path is
// empty it searches default locations ("config.yaml"); if nothing is
// found it uses built-in defaults. Environment overrides apply after
// the file, and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"config.yaml",
			"specmon.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded
// configuration. Malformed values are ignored.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			applog.Debugf("configuration: overriding debug from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		applog.Debugf("configuration: overriding log_level from env: %s", val)
	}

	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Audio.SampleRate = fVal
			applog.Debugf("configuration: overriding audio.sample_rate from env: %g", fVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_INPUT_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Audio.InputDevice = iVal
			applog.Debugf("configuration: overriding audio.input_device from env: %d", iVal)
		}
	}

	if val, ok := os.LookupEnv("ENV_TRANSPORT_MODE"); ok {
		cfg.Transport.Mode = val
		applog.Debugf("configuration: overriding transport.mode from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET"); ok {
		cfg.Transport.UDPTarget = val
		applog.Debugf("configuration: overriding transport.udp_target from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDR"); ok {
		cfg.Transport.WSAddr = val
		applog.Debugf("configuration: overriding transport.ws_addr from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.SendInterval = dur
			applog.Debugf("configuration: overriding transport.send_interval from env: %s", dur)
		}
	}
}
