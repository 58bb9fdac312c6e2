package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/settings"
	"github.com/warm3snow/pytutor/internal/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage PyTutor settings",
	Long:  `View and modify the tutoring mode and backend settings.`,
	RunE:  showConfig,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Change one setting and print what changed. Keys are listed by
'pytutor config keys'; "mode" and "backend" are accepted as short forms.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}

		before := a.Settings.Snapshot()
		after, err := a.Settings.SetValue(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if d := settings.Diff(before, after); d != "" {
			fmt.Fprint(out, d)
		} else {
			fmt.Fprintln(out, "No change.")
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List the settable keys",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"standalone": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(settings.Keys(), "\n"))
	},
}

func showConfig(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := a.Settings.Snapshot()
	ui.KeyValue(out, [][2]string{
		{"config file", a.Config.Path()},
		{"store", a.Store.Path()},
		{"mode", string(s.Mode)},
		{"backend", string(s.Backend)},
	})
	fmt.Fprintln(out)
	fmt.Fprint(out, s.Render())
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configKeysCmd)
	rootCmd.AddCommand(configCmd)
}
