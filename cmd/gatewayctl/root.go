package main

import (
	"context"
	"os"
	"whatsapp-gateway-client/internal/config"
	"whatsapp-gateway-client/internal/infra/logger"
	"whatsapp-gateway-client/internal/infra/provider"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gatewayctl",
	Short: "Talk to a WhatsApp gateway instance",
	Long: `gatewayctl checks status, drains the message queue and sends messages
through the gateway /esp32 API.

Connection flags fall back to GATEWAY_URL, GATEWAY_API_KEY and INSTANCE_KEY,
read from the environment or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		gatewayURL = flagOrEnv(cmd, "url", gatewayURL, "GATEWAY_URL")
		apiKey = flagOrEnv(cmd, "api-key", apiKey, "GATEWAY_API_KEY")
		instanceKey = flagOrEnv(cmd, "instance", instanceKey, "INSTANCE_KEY")

		if gatewayURL == "" || apiKey == "" || instanceKey == "" {
			return errors.New("gateway url, api key and instance are required (flags or GATEWAY_URL, GATEWAY_API_KEY, INSTANCE_KEY)")
		}

		log := logger.NewLoggerWithOutput(context.Background(), os.Stderr, false, logLevel)
		client = provider.NewGatewayClient(log, nil, gatewayURL, apiKey, instanceKey)
		return nil
	},
}

var gatewayURL string
var apiKey string
var instanceKey string
var logLevel string

var client provider.IGatewayProvider

func init() {
	RootCmd.PersistentFlags().StringVar(&gatewayURL, "url", "", "Gateway base URL")
	RootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gateway API key")
	RootCmd.PersistentFlags().StringVar(&instanceKey, "instance", "", "WhatsApp instance key")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Diagnostic log level")
}

func flagOrEnv(cmd *cobra.Command, flag, current, env string) string {
	if cmd.Flags().Changed(flag) {
		return current
	}
	return config.GetEnvDefault(env, current)
}
