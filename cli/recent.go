package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recentLimit int

// NewRecentCmd prints the newest mirrored messages across all conversations.
func NewRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the newest messages across all conversations",
		Args:  cobra.NoArgs,
		RunE:  runRecent,
	}

	cmd.Flags().IntVar(&recentLimit, "limit", 0, "Maximum number of messages (default 50, capped at 200)")

	return cmd
}

func runRecent(cmd *cobra.Command, _ []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	messages, err := service.RecentMessages(recentLimit)
	if err != nil {
		return fmt.Errorf("list recent messages: %w", err)
	}
	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No messages yet.")
		return nil
	}

	for _, m := range messages {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s: %s\n",
			m.CreatedAt, m.ConversationID, m.UserID, m.DisplayContent())
	}
	return nil
}
