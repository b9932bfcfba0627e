package main

import (
	"fmt"
	"strconv"
	"strings"
	"whatsapp-gateway-client/internal/domain/entities"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errSendFailed = errors.New("gateway did not accept the message, see log for details")

// sendCmd groups the outgoing message commands
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message through the gateway",
}

var sendTextCmd = &cobra.Command{
	Use:   "text <to> <text>",
	Short: "Send a plain text message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, client.SendText(args[0], args[1]))
	},
}

var sendGroupCmd = &cobra.Command{
	Use:   "group <groupId> <text>",
	Short: "Send a text message to a group",
	Long:  `Send a text message to a group. The @g.us suffix is added when missing.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, client.SendTextToGroup(args[0], args[1]))
	},
}

var sendButtonsCmd = &cobra.Command{
	Use:   "buttons <to> <text> <button>...",
	Short: "Send a message with reply buttons",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, client.SendButtons(args[0], args[1], args[2:]))
	},
}

var sendListCmd = &cobra.Command{
	Use:   "list <to> <text>",
	Short: "Send a list message",
	Long: `Send a list message. Each --section is "Title=row1,row2,...", sections
and rows keep the order given.

	gatewayctl send list 5511999@c.us "Pick one" --title Menu --button-text Open \
		--section "Drinks=Water,Coffee" --section "Food=Bread"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sections, err := parseSections(listSections)
		if err != nil {
			return err
		}
		return report(cmd, client.SendList(args[0], args[1], listTitle, listButtonText, sections))
	},
}

var sendLocationCmd = &cobra.Command{
	Use:   "location <to> <lat> <lng>",
	Short: "Send a location pin",
	Long: `Send a location pin. Use -- before the arguments when a coordinate is negative.

	gatewayctl send location -- 5511999@c.us -23.5505 -46.6333`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return errors.Wrap(err, "invalid latitude")
		}
		lng, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return errors.Wrap(err, "invalid longitude")
		}
		return report(cmd, client.SendLocation(args[0], lat, lng))
	},
}

var listTitle string
var listButtonText string
var listSections []string

func init() {
	RootCmd.AddCommand(sendCmd)
	sendCmd.AddCommand(sendTextCmd, sendGroupCmd, sendButtonsCmd, sendListCmd, sendLocationCmd)

	sendListCmd.Flags().StringVar(&listTitle, "title", "", "List title")
	sendListCmd.Flags().StringVar(&listButtonText, "button-text", "Options", "Label of the button that opens the list")
	sendListCmd.Flags().StringArrayVar(&listSections, "section", nil, `Section as "Title=row1,row2" (repeatable)`)
}

func parseSections(specs []string) ([]entities.ListSection, error) {
	sections := make([]entities.ListSection, 0, len(specs))
	for _, spec := range specs {
		title, rows, found := strings.Cut(spec, "=")
		if !found {
			return nil, fmt.Errorf("section %q: expected Title=row1,row2", spec)
		}

		section := entities.ListSection{Title: title}
		if rows != "" {
			section.Rows = strings.Split(rows, ",")
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func report(cmd *cobra.Command, ok bool) error {
	if !ok {
		return errSendFailed
	}
	fmt.Fprintln(cmd.OutOrStdout(), "sent")
	return nil
}
