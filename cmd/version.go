package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/machine"
	"github.com/warm3snow/pytutor/internal/ui"
)

// Version information
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Display version information",
	Long:        `Display detailed version information about PyTutor.`,
	Annotations: map[string]string{"standalone": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		PrintLogo("Version")

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "PyTutor - AI Python Tutor")
		rows := [][2]string{
			{"Version", Version},
			{"Build Date", BuildDate},
			{"Git Commit", GitCommit},
		}
		rows = append(rows, machine.NewContext().GetSystemInfo()...)
		ui.KeyValue(out, rows)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
