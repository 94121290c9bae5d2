// Package cli wires the terminal commands over the mirror service.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mixterm",
		Short:         "Terminal client for the Mixin messaging network",
		Long:          "mixterm mirrors conversations and messages into a local SQLite store\nand keeps the mirror current over the blaze push stream.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		NewConversationsCmd(),
		NewMessagesCmd(),
		NewRecentCmd(),
		NewSendCmd(),
		NewWithdrawCmd(),
		NewGroupCmd(),
		NewUserCmd(),
		NewWatchCmd(),
		NewBackgroundCmd(),
	)

	return cmd
}
