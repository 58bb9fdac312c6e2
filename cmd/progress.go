package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/app"
)

// progressCmd represents the progress command
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or update your learning progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		app.PrintProgress(cmd.OutOrStdout(), a.Progress.Load(cmd.Context()))
		return nil
	},
}

var progressCompleteCmd = &cobra.Command{
	Use:   "complete N",
	Short: "Mark module N as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("module must be a number, got %q", args[0])
		}
		rec, err := a.Progress.MarkComplete(cmd.Context(), n)
		if err != nil {
			return err
		}
		app.PrintProgress(cmd.OutOrStdout(), rec)
		return nil
	},
}

var progressAttemptCmd = &cobra.Command{
	Use:   "attempt",
	Short: "Record one practice attempt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		rec, err := a.Progress.RecordAttempt(cmd.Context())
		if err != nil {
			return err
		}
		app.PrintProgress(cmd.OutOrStdout(), rec)
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all saved progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}
		if err := a.Progress.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
		return nil
	},
}

func init() {
	progressCmd.AddCommand(progressCompleteCmd, progressAttemptCmd, progressResetCmd)
	rootCmd.AddCommand(progressCmd)
}
