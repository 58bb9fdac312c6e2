package cmd

import (
	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/logging"
	"github.com/warm3snow/pytutor/internal/ui"
)

var chatPath string

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the tutor",
	Long: `Start an interactive tutoring session. Type a question to ask it,
or a slash command such as /mode or /backend to change settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}

		ui.ShowBanner(cmd.OutOrStdout())
		if err := a.NewChat(chatPath, cmd.OutOrStdout()).Run(cmd.Context()); err != nil {
			logging.LogError("Interactive chat failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatPath, "path", "p", "", "lesson page the session is anchored to")
}
