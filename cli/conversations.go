package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewConversationsCmd lists the mirrored conversations.
func NewConversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List mirrored conversations, most recently updated first",
		Args:  cobra.NoArgs,
		RunE:  runConversations,
	}
}

func runConversations(cmd *cobra.Command, _ []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	conversations, err := service.Conversations()
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}
	if len(conversations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversations yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tMEMBERS\tUPDATED")
	for _, c := range conversations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.ConversationID, displayName(c.Name), c.Category, len(c.Participants), c.UpdatedAt)
	}
	return w.Flush()
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "(unnamed)"
	}
	return name
}
