package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/warm3snow/pytutor/internal/settings"
)

const (
	Logo = `
██████╗ ██╗   ██╗████████╗██╗   ██╗████████╗ ██████╗ ██████╗
██╔══██╗╚██╗ ██╔╝╚══██╔══╝██║   ██║╚══██╔══╝██╔═══██╗██╔══██╗
██████╔╝ ╚████╔╝    ██║   ██║   ██║   ██║   ██║   ██║██████╔╝
██╔═══╝   ╚██╔╝     ██║   ██║   ██║   ██║   ██║   ██║██╔══██╗
██║        ██║      ██║   ╚██████╔╝   ██║   ╚██████╔╝██║  ██║
╚═╝        ╚═╝      ╚═╝    ╚═════╝    ╚═╝    ╚═════╝ ╚═╝  ╚═╝`
)

var (
	errorBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// ShowBanner displays the logo and welcome message
func ShowBanner(w io.Writer) {
	coral := color.New(color.FgRed).Add(color.FgYellow)
	fmt.Fprintln(w, "\n* Welcome to PyTutor, your Python study buddy!")
	coral.Fprintln(w, Logo)
}

// ClearScreen clears the terminal screen
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// CreateColoredPrinters returns styled printer functions for student and tutor messages
func CreateColoredPrinters(w io.Writer) (userPrinter, tutorPrinter func(string)) {
	userStyle := color.New(color.FgGreen).Add(color.Bold)
	tutorStyle := color.New(color.FgBlue)

	userPrinter = func(msg string) {
		userStyle.Fprintf(w, "\nYou: %s\n", msg)
	}

	tutorPrinter = func(msg string) {
		tutorStyle.Fprintf(w, "\nTutor: %s\n\n", msg)
	}

	return
}

// PrintSessionInfo displays the tutoring mode and the backend in use
func PrintSessionInfo(w io.Writer, s settings.Settings) {
	info := color.New(color.FgCyan)
	active := s.Active()
	info.Fprintf(w, "\n%s mode, %s backend (%s)\n", s.Mode, s.Backend, active.Model)
	fmt.Fprintln(w, "Type /help for commands, or 'exit' to end the session.")
}

// Renderer turns tutor answers into terminal output.
type Renderer struct {
	md *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer wrapped at width columns. The
// style follows the terminal background.
func NewRenderer(width int) *Renderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{md: md}
}

// Markdown renders markdown text, falling back to the raw text when the
// renderer is unavailable.
func (r *Renderer) Markdown(text string) string {
	if r == nil || r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// ErrorBox frames an error message.
func ErrorBox(msg string) string {
	return errorBox.Render(labelStyle.Render("Tutor unavailable") + "\n" + msg + "\n" +
		dimStyle.Render("Check the backend with 'pytutor probe' or change it with 'pytutor config set'."))
}

// KeyValue renders an aligned key/value table.
func KeyValue(w io.Writer, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %s\n", labelStyle.Render(fmt.Sprintf("%-*s", width, r[0])), r[1])
	}
}
