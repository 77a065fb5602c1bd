// Package config reads the bridge's process configuration from environment
// variables. Every setting is optional and falls back to the default the
// engine ships with.
package config

import (
	"os"
	"strconv"

	"github.com/c360/modhostbridge/errors"
)

// Config holds every environment-derived setting the bridge needs at boot.
type Config struct {
	EngineHost         string
	EnginePort         int
	EngineFeedbackPort int

	// NATSURL is the connection endpoint for the underlying message bus.
	// The three subjects below preserve the original three-endpoint
	// design as distinct subjects on a single connection rather than
	// three separate binds.
	NATSURL string

	BusCommandSubject string
	BusPublishSubject string
	BusHealthSubject  string
}

const (
	defaultEngineHost         = "127.0.0.1"
	defaultEnginePort         = 5555
	defaultEngineFeedbackPort = 5556
	defaultNATSURL            = "nats://127.0.0.1:4222"
	defaultBusCommandSubject  = "tcp://127.0.0.1:6000"
	defaultBusPublishSubject  = "tcp://127.0.0.1:6001"
	defaultBusHealthSubject   = "tcp://127.0.0.1:6002"
)

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	c := &Config{
		EngineHost:        getEnv("MOD_HOST_HOST", defaultEngineHost),
		NATSURL:           getEnv("MODHOST_BRIDGE_NATS_URL", defaultNATSURL),
		BusCommandSubject: getEnv("MODHOST_BRIDGE_REP", defaultBusCommandSubject),
		BusPublishSubject: getEnv("MODHOST_BRIDGE_PUB", defaultBusPublishSubject),
		BusHealthSubject:  getEnv("MODHOST_BRIDGE_HEALTH", defaultBusHealthSubject),
	}

	port, err := getEnvInt("MOD_HOST_PORT", defaultEnginePort)
	if err != nil {
		return nil, err
	}
	c.EnginePort = port

	feedbackPort, err := getEnvInt("MOD_HOST_FEEDBACK_PORT", defaultEngineFeedbackPort)
	if err != nil {
		return nil, err
	}
	c.EngineFeedbackPort = feedbackPort

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.WrapInvalid(err, "Config", "Load", "parse "+key)
	}
	return n, nil
}
