package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSendCmd sends a plain text message into a conversation.
func NewSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <conversation-id> <text>...",
		Short: "Send a plain text message",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSend,
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	text := strings.Join(args[1:], " ")
	message, err := service.SendText(cmd.Context(), args[0], text)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent %s\n", message.MessageID)
	return nil
}
