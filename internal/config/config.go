package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPollIntervalMs = 5000
	defaultLogLevel       = "info"
	defaultPort           = "8080"
)

// Config holds everything needed to reach the gateway and run the local bridge.
type Config struct {
	GatewayURL     string
	GatewayAPIKey  string
	InstanceKey    string
	PollIntervalMs int
	PollEnabled    bool
	LogLevel       string
	LogJSON        bool
	Port           string
	BridgeToken    string
}

// LoadEnv loads variables from a .env file in the working directory.
// A missing file is not fatal, the process environment is used as is.
func LoadEnv() error {
	err := godotenv.Load(".env")
	if err != nil {
		log.Printf("Could not load .env file: %v", err)
		return err
	}
	return nil
}

func GetEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt returns fallback when the variable is unset or not an integer.
func GetEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Environment variable %s=%q is not an integer, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func GetEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Load reads the gateway and bridge settings from the environment.
//
// Returns:
//   - Config: the populated configuration, with defaults applied to optional keys.
//   - error: names every required variable that is missing.
//
// Dependencies:
//   - Environment variables:
//   - GATEWAY_URL: base URL of the WhatsApp gateway (required).
//   - GATEWAY_API_KEY: value of the API key header (required).
//   - INSTANCE_KEY: WhatsApp session addressed on the gateway (required).
//   - POLL_ENABLED: start the background poller (default false). The poller
//     consumes the gateway queue, so /messages is not served while it runs.
//   - POLL_INTERVAL_MS, LOG_LEVEL, LOG_JSON, PORT, BRIDGE_TOKEN: optional.
func Load() (Config, error) {
	requiredConfigs := []struct {
		name  string
		value string
	}{
		{"GATEWAY_URL", os.Getenv("GATEWAY_URL")},
		{"GATEWAY_API_KEY", os.Getenv("GATEWAY_API_KEY")},
		{"INSTANCE_KEY", os.Getenv("INSTANCE_KEY")},
	}

	var missing []string
	for _, configItem := range requiredConfigs {
		if configItem.value == "" {
			missing = append(missing, configItem.name)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return Config{
		GatewayURL:     strings.TrimRight(requiredConfigs[0].value, "/"),
		GatewayAPIKey:  requiredConfigs[1].value,
		InstanceKey:    requiredConfigs[2].value,
		PollIntervalMs: GetEnvInt("POLL_INTERVAL_MS", defaultPollIntervalMs),
		PollEnabled:    GetEnvBool("POLL_ENABLED", false),
		LogLevel:       GetEnvDefault("LOG_LEVEL", defaultLogLevel),
		LogJSON:        GetEnvBool("LOG_JSON", true),
		Port:           GetEnvDefault("PORT", defaultPort),
		BridgeToken:    os.Getenv("BRIDGE_TOKEN"),
	}, nil
}
