package settings

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Render lists the settings one "key = value" line per key, sorted, with
// credentials masked.
func (s Settings) Render() string {
	pairs := s.Redacted().Pairs()
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(pairs[k])
		b.WriteString("\n")
	}
	return b.String()
}

// Diff returns the changed lines between two renderings, prefixed with
// "- " and "+ ". It is empty when nothing changed.
func Diff(before, after Settings) string {
	var lines []string
	index := make(map[string]rune)
	encode := func(text string) []rune {
		var out []rune
		for _, line := range strings.SplitAfter(text, "\n") {
			if line == "" {
				continue
			}
			r, ok := index[line]
			if !ok {
				r = lineRuneBase + rune(len(lines))
				index[line] = r
				lines = append(lines, line)
			}
			out = append(out, r)
		}
		return out
	}
	a, b := encode(before.Render()), encode(after.Render())

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	var out strings.Builder
	for _, d := range dmp.DiffMainRunes(a, b, false) {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, r := range d.Text {
			out.WriteString(prefix)
			out.WriteString(lines[r-lineRuneBase])
		}
	}
	return out.String()
}

// lineRuneBase starts the private use area, so every line maps to a rune
// that survives the string conversions inside the diff.
const lineRuneBase = 0xE000
