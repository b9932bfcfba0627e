package main

import (
	"os"
	"whatsapp-gateway-client/internal/config"
)

func main() {
	config.LoadEnv()

	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
