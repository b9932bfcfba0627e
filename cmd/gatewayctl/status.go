package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show instance connectivity, phone number and queue size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "connected: %t\n", client.IsConnected())
		fmt.Fprintf(out, "phone: %s\n", client.GetPhoneNumber())
		fmt.Fprintf(out, "queue: %d\n", client.GetQueueSize())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
