package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUserCmd looks up a remote user profile.
func NewUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <user-id>",
		Short: "Look up a user profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runUser,
	}
}

func runUser(cmd *cobra.Command, args []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	user, err := service.User(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %q not found", args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", user.UserID, user.IdentityNumber, user.FullName)
	return nil
}
