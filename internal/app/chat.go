package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/warm3snow/pytutor/internal/completion"
	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/progress"
	"github.com/warm3snow/pytutor/internal/settings"
	"github.com/warm3snow/pytutor/internal/tutor"
	"github.com/warm3snow/pytutor/internal/ui"
)

// Chat is an interactive tutoring session. Questions are answered in the
// background so the prompt stays responsive; a question typed while another
// is being answered is refused.
type Chat struct {
	app      *App
	session  *tutor.Session
	out      io.Writer
	renderer *ui.Renderer
	cmdStyle *color.Color
	user     func(string)
	tutor    func(string)
	wg       sync.WaitGroup
}

// NewChat creates a chat session asking from location.
func (a *App) NewChat(location string, out io.Writer) *Chat {
	c := &Chat{
		app:      a,
		session:  tutor.NewSession(a.Tutor, location),
		renderer: ui.NewRenderer(80),
		cmdStyle: color.New(color.FgYellow).Add(color.Bold),
	}
	c.setOutput(out)
	return c
}

func (c *Chat) setOutput(out io.Writer) {
	c.out = out
	c.user, c.tutor = ui.CreateColoredPrinters(out)
}

// ChatCommands are the slash commands understood by the chat loop.
func ChatCommands() []completion.Command {
	backends := make([]string, len(settings.Backends))
	for i, b := range settings.Backends {
		backends[i] = string(b)
	}
	return []completion.Command{
		{Name: "mode", Args: []string{string(settings.ModeGuided), string(settings.ModeDirect)}},
		{Name: "backend", Args: backends},
		{Name: "probe"},
		{Name: "progress"},
		{Name: "load"},
		{Name: "clear"},
		{Name: "quit"},
	}
}

// Run reads questions until the user quits.
func (c *Chat) Run(ctx context.Context) error {
	ui.PrintSessionInfo(c.out, c.app.Settings.Snapshot())

	historyFile := ""
	if dir := filepath.Dir(c.app.Store.Path()); dir != "" {
		historyFile = filepath.Join(dir, "chat_history.txt")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32m>\033[0m ",
		HistoryFile:     historyFile,
		AutoComplete:    completion.NewReadlineCompleter(ChatCommands()),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("error initializing readline: %w", err)
	}
	defer rl.Close()

	// Answers arrive while the prompt is shown; readline's writer redraws it.
	c.setOutput(rl.Stdout())

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(input) == 0 {
					break
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("error reading input: %w", err)
		}

		if c.Handle(ctx, input) {
			break
		}
	}

	c.Wait()
	return nil
}

// Handle processes one line of input and reports whether the session should
// end.
func (c *Chat) Handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return false
	case input == "exit" || input == "quit" || input == "/quit":
		fmt.Fprintln(c.out, "Goodbye!")
		return true
	case strings.HasPrefix(input, "/"):
		c.command(ctx, input)
		return false
	}

	answer, err := c.session.Start(ctx, input)
	if errors.Is(err, tutor.ErrBusy) {
		c.cmdStyle.Fprintln(c.out, "Still working on your previous question, please wait.")
		return false
	}
	c.user(input)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.show(<-answer)
	}()
	return false
}

// Wait blocks until every question asked so far has been answered.
func (c *Chat) Wait() {
	c.wg.Wait()
}

func (c *Chat) show(resp tutor.Response) {
	if resp.IsError {
		fmt.Fprintln(c.out, ui.ErrorBox(resp.Text))
		return
	}
	c.tutor(c.renderer.Markdown(resp.Text))
}

func (c *Chat) command(ctx context.Context, input string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "help":
		c.help()
	case "mode":
		c.setting(ctx, "mode", arg)
	case "backend":
		c.setting(ctx, "backend", arg)
	case "probe":
		r := c.app.Dispatcher.Probe(ctx, c.app.Settings.Snapshot().Backend)
		PrintProbe(c.out, r)
	case "progress":
		PrintProgress(c.out, c.app.Progress.Load(ctx))
	case "load":
		c.load(ctx)
	case "clear":
		ui.ClearScreen(c.out)
	default:
		c.cmdStyle.Fprintf(c.out, "Unknown command /%s, type /help for the list.\n", name)
	}
}

func (c *Chat) setting(ctx context.Context, key, value string) {
	if value == "" {
		s := c.app.Settings.Snapshot()
		current := string(s.Mode)
		if key == "backend" {
			current = string(s.Backend)
		}
		fmt.Fprintf(c.out, "%s: %s\n", key, current)
		return
	}
	s, err := c.app.Settings.SetValue(ctx, key, value)
	if err != nil {
		c.cmdStyle.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	ui.PrintSessionInfo(c.out, s)
}

func (c *Chat) load(ctx context.Context) {
	err := c.app.LoadEngine(ctx, func(p llm.LoadProgress) {
		fmt.Fprintf(c.out, "\r%3.0f%% %s", p.Progress*100, p.Text)
	})
	fmt.Fprintln(c.out)
	if err != nil {
		c.cmdStyle.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Model loaded.")
}

func (c *Chat) help() {
	rows := []struct{ cmd, desc string }{
		{"/help", "Show this help message"},
		{"/mode [guided|direct]", "Show or change the tutoring style"},
		{"/backend [kind]", "Show or change the AI backend"},
		{"/probe", "Check that the backend is reachable"},
		{"/progress", "Show your saved progress"},
		{"/load", "Load the in-process model"},
		{"/clear", "Clear the screen"},
		{"exit", "or quit - End the session"},
	}
	fmt.Fprintln(c.out, "\nAvailable commands:")
	for _, r := range rows {
		c.cmdStyle.Fprintf(c.out, "  %s", r.cmd)
		fmt.Fprintf(c.out, " - %s\n", r.desc)
	}
}

// PrintProbe reports a connectivity probe.
func PrintProbe(w io.Writer, r llm.ProbeResult) {
	if !r.OK {
		fmt.Fprintln(w, ui.ErrorBox(fmt.Sprintf("%s: %s", r.Backend, r.Detail)))
		return
	}
	color.New(color.FgGreen).Fprintf(w, "%s backend is reachable", r.Backend)
	if r.Detail != "" {
		fmt.Fprintf(w, " (%s)", r.Detail)
	}
	fmt.Fprintln(w)
	for _, m := range r.Models {
		fmt.Fprintf(w, "  - %s\n", m)
	}
}

// PrintProgress lists completed modules and practice attempts.
func PrintProgress(w io.Writer, rec progress.Record) {
	done := rec.CompletedModules()
	if len(done) == 0 {
		fmt.Fprintln(w, "Completed modules: none yet")
	} else {
		nums := make([]string, len(done))
		for i, n := range done {
			nums[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(w, "Completed modules: %s\n", strings.Join(nums, ", "))
	}
	fmt.Fprintf(w, "Practice attempts: %d\n", rec.PracticeAttempts)
}
