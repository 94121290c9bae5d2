package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mixterm/mirror"
	"mixterm/storage"
)

var (
	watchConversation string
	watchForce        bool
)

// NewWatchCmd runs the push stream in the foreground and prints events as the
// mirror absorbs them.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live messages into the local mirror",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}

	cmd.Flags().StringVar(&watchConversation, "conversation", "", "Only show messages from this conversation")
	cmd.Flags().BoolVar(&watchForce, "force", false, "Stream even when background streaming is disabled")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	service, closer, err := openService()
	if err != nil {
		return err
	}
	defer closer()

	enabled, err := service.BackgroundStreamingEnabled()
	if err != nil {
		return fmt.Errorf("read streaming toggle: %w", err)
	}
	if !enabled && !watchForce {
		return fmt.Errorf("background streaming is disabled; run %q or pass --force", "mixterm background on")
	}

	out := cmd.OutOrStdout()
	opts := mirror.StreamOptions{
		ConversationID: watchConversation,
		OnMessage: func(m storage.Message) {
			fmt.Fprintf(out, "%s (%s) %s: %s\n", m.CreatedAt, m.ConversationID, m.UserID, m.DisplayContent())
		},
		OnRecall: func(messageID string) {
			fmt.Fprintf(out, "recalled %s\n", messageID)
		},
		OnConversation: func(conversationID string) {
			fmt.Fprintf(out, "conversation updated %s\n", conversationID)
		},
	}
	if err := service.StartStream(opts); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer service.StopStream()

	fmt.Fprintln(out, "Watching. Press Ctrl+C to stop.")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return nil
}
