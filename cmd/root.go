package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/warm3snow/pytutor/internal/app"
	"github.com/warm3snow/pytutor/internal/config"
	"github.com/warm3snow/pytutor/internal/logging"
)

var (
	// Used for flags
	cfgFile string
	verbose bool
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// appKey is the key for storing the application state in context
	appKey contextKey = "app"
)

// PrintLogo prints the PYTUTOR logo with the given subcommand name
func PrintLogo(subcommand string) {
	logoColor := color.New(color.FgCyan, color.Bold)
	logoColor.Println(`
 ___      _____      _
| _ \_  _|_   _|_  _| |_ ___ _ _
|  _/ || | | || || |  _/ _ \ '_|
|_|  \_, | |_| \_,_|\__\___/_|
     |__/`)
	if subcommand != "" {
		fmt.Printf("         %s\n", subcommand)
	}
	fmt.Println()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pytutor",
	Short: "PyTutor is an AI Python tutor for your terminal",
	Long: `PyTutor answers Python questions in the context of the lesson you are
working on. It talks to an in-process model, a local chat server or a remote
chat-completions API, and falls back to built-in explanations when the
backend is unavailable.`,
	SilenceUsage: true,
	Annotations:  map[string]string{"standalone": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		PrintLogo("")
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["standalone"] == "true" {
			return nil
		}
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer logging.Close()

	cmd, err := rootCmd.ExecuteC()
	if a := GetApp(cmd); a != nil {
		if err := a.Close(); err != nil {
			logging.LogError("Failed to close store", "error", err)
		}
		cmd.SetContext(context.Background())
	}
	if err != nil {
		logging.LogError("Command execution failed", "error", err)
		return err
	}

	logging.LogAppExit()
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pytutor.yaml or $HOME/.pytutor/pytutor.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also write logs to stderr")
}

// setup loads the configuration, starts logging and opens the application
// state for cmd.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := logging.InitLogger(logging.Options{
		Dir:    cfg.Logging.Dir,
		Level:  cfg.Logging.Level,
		Stderr: cfg.Logging.Stderr || verbose,
	}); err != nil {
		// Continue without file logging
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
	}
	logging.LogAppStart(Version)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
	return nil
}

// GetApp retrieves the application state from the command context
func GetApp(cmd *cobra.Command) *app.App {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	if a, ok := cmd.Context().Value(appKey).(*app.App); ok {
		return a
	}
	return nil
}

// mustApp is GetApp for commands that cannot run without one.
func mustApp(cmd *cobra.Command) (*app.App, error) {
	a := GetApp(cmd)
	if a == nil {
		return nil, fmt.Errorf("application is not initialised")
	}
	return a, nil
}
