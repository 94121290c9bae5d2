package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGroupCmd creates a group conversation and mirrors it locally.
func NewGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group <name> <participant-id>...",
		Short: "Create a group conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runGroup,
	}
}

func runGroup(cmd *cobra.Command, args []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	conversation, err := service.CreateGroup(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created group %q (%s) with %d participants\n",
		conversation.Name, conversation.ConversationID, len(conversation.Participants))
	return nil
}
