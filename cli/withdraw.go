package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWithdrawCmd recalls a previously sent message.
func NewWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <conversation-id> <message-id>",
		Short: "Recall a previously sent message",
		Args:  cobra.ExactArgs(2),
		RunE:  runWithdraw,
	}
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	if err := service.Withdraw(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Withdrew %s\n", args[1])
	return nil
}
