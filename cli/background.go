package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewBackgroundCmd shows or sets the background streaming toggle.
func NewBackgroundCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "background [on|off]",
		Short:     "Show or set the background streaming toggle",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE:      runBackground,
	}
}

func runBackground(cmd *cobra.Command, args []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	if len(args) == 1 {
		if err := service.SetBackgroundStreamingEnabled(args[0] == "on"); err != nil {
			return fmt.Errorf("set streaming toggle: %w", err)
		}
	}

	enabled, err := service.BackgroundStreamingEnabled()
	if err != nil {
		return fmt.Errorf("read streaming toggle: %w", err)
	}
	state := "off"
	if enabled {
		state = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Background streaming is %s\n", state)
	return nil
}
