package main

import (
	"fmt"
	"text/tabwriter"
	"whatsapp-gateway-client/internal/domain/entities"
	"whatsapp-gateway-client/internal/infra/provider"

	"github.com/spf13/cobra"
)

// messagesCmd represents the messages command
var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Fetch the next batch of queued messages",
	Long: `Fetch up to --limit messages from the gateway queue.

Fetched messages are removed from the queue on the gateway.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if messageLimit < 1 || messageLimit > provider.MaxMessages {
			return fmt.Errorf("--limit must be between 1 and %d", provider.MaxMessages)
		}

		var buf [provider.MaxMessages]entities.Message
		count := client.GetMessages(buf[:messageLimit])

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, msg := range buf[:count] {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", msg.ID, msg.From, msg.Timestamp, msg.Text)
		}
		fmt.Fprintf(w, "%d message(s)\n", count)
		return w.Flush()
	},
}

var messageLimit int

func init() {
	RootCmd.AddCommand(messagesCmd)

	messagesCmd.Flags().IntVar(&messageLimit, "limit", provider.MaxMessages, "Batch size")
}
