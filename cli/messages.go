package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mixterm/storage"
)

// NewMessagesCmd prints one conversation's mirrored messages, oldest first.
func NewMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <conversation-id>",
		Short: "Show a conversation's messages, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runMessages,
	}
}

func runMessages(cmd *cobra.Command, args []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	messages, err := service.Messages(args[0])
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No messages in this conversation.")
		return nil
	}

	for _, m := range messages {
		printMessage(cmd, m)
	}
	return nil
}

func printMessage(cmd *cobra.Command, m storage.Message) {
	marker := "<"
	if m.Direction == storage.DirectionOutgoing {
		marker = ">"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s [%s] %s\n",
		m.CreatedAt, marker, m.UserID, m.MessageID, m.DisplayContent())
}
