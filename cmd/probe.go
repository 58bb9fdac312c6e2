package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/app"
	"github.com/warm3snow/pytutor/internal/settings"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:       "probe [backend]",
	Short:     "Check that a backend is reachable",
	Long:      `Check connectivity of the active backend, or of the one named.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"engine", "local", "remote", "gemini"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}

		kind := a.Settings.Snapshot().Backend
		if len(args) == 1 {
			kind = settings.BackendKind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown backend %q", args[0])
			}
		}

		r := a.Dispatcher.Probe(cmd.Context(), kind)
		app.PrintProbe(cmd.OutOrStdout(), r)
		if !r.OK {
			return fmt.Errorf("%s backend is not reachable", kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
