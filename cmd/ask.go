package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/ui"
)

var (
	askPath string
	askHTML bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the tutor one question",
	Long: `Ask the tutor a single question and print the answer.
Use --path to say which lesson page you are on, for example
--path /modules/module-3.html or --path /starter/lesson-2.html.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp(cmd)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		resp := a.Tutor.Ask(cmd.Context(), question, askPath)

		out := cmd.OutOrStdout()
		switch {
		case askHTML:
			fmt.Fprintln(out, resp.Markup)
		case resp.IsError:
			fmt.Fprintln(out, ui.ErrorBox(resp.Text))
		default:
			fmt.Fprint(out, ui.NewRenderer(80).Markdown(resp.Text))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&askPath, "path", "p", "", "lesson page the question is asked from")
	askCmd.Flags().BoolVar(&askHTML, "html", false, "print the sanitized HTML instead of terminal output")
}
