package completion

import (
	"sort"
	"strings"
)

// Command is a chat slash command and the values its argument can take.
type Command struct {
	Name string
	Args []string
}

// CommandCompleter implements slash command completion logic
type CommandCompleter struct {
	commands map[string][]string
	names    []string
}

// NewCommandCompleter creates a new command completer. "help" is always
// available.
func NewCommandCompleter(commands []Command) *CommandCompleter {
	c := &CommandCompleter{commands: map[string][]string{"help": nil}}
	for _, cmd := range commands {
		c.commands[cmd.Name] = cmd.Args
	}
	for name := range c.commands {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// DoComplete returns the candidate suffixes for the input up to pos, and the
// length of the word being completed.
func (c *CommandCompleter) DoComplete(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])

	// Only lines starting with / are commands
	if len(lineStr) == 0 || lineStr[0] != '/' {
		return nil, 0
	}

	name, arg, hasArg := strings.Cut(lineStr[1:], " ")
	if !hasArg {
		return suffixes(c.names, name), len(name)
	}

	values, ok := c.commands[name]
	if !ok || strings.Contains(arg, " ") {
		return nil, 0
	}
	return suffixes(values, arg), len(arg)
}

// suffixes returns the untyped remainder of every candidate with prefix.
func suffixes(candidates []string, prefix string) [][]rune {
	var out [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]))
		}
	}
	return out
}
