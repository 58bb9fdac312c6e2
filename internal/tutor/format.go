package tutor

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fencedCode  = regexp.MustCompile("```(?:([A-Za-z0-9_+#-]+)[ \t]*\n|\n?)([\\s\\S]*?)```")
	inlineCode  = regexp.MustCompile("`([^`\n]+)`")
	boldText    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	placeholder = regexp.MustCompile("\x00(\\d+)\x00")
	blankLines  = regexp.MustCompile(`\n[ \t]*\n+`)
)

var markupPolicy = newMarkupPolicy()

func newMarkupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "pre", "code", "strong", "em")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^error$`)).OnElements("p")
	return p
}

// Format converts lightweight markdown from a backend into sanitized HTML.
// It is a fixed list of substitutions, not a markdown parser: lists, links
// and nested emphasis pass through as text, and an unclosed fence stays
// visible as literal backticks.
func Format(text string) Response {
	return Response{
		Markup: toMarkup(text),
		Text:   text,
	}
}

func toMarkup(text string) string {
	s := strings.NewReplacer("\r\n", "\n", "\x00", "").Replace(text)
	s = html.EscapeString(s)

	// Code is rendered first and parked behind placeholders so the inline
	// substitutions below never see it.
	var protected []string
	park := func(markup string) string {
		protected = append(protected, markup)
		return "\x00" + strconv.Itoa(len(protected)-1) + "\x00"
	}

	s = fencedCode.ReplaceAllStringFunc(s, func(m string) string {
		parts := fencedCode.FindStringSubmatch(m)
		lang, body := parts[1], strings.TrimRight(parts[2], "\n")
		open := "<pre><code>"
		if lang != "" {
			open = fmt.Sprintf(`<pre><code class="language-%s">`, strings.ToLower(lang))
		}
		// Blank lines around the block make it its own paragraph.
		return "\n\n" + park(open+body+"</code></pre>") + "\n\n"
	})
	s = inlineCode.ReplaceAllStringFunc(s, func(m string) string {
		return park("<code>" + inlineCode.FindStringSubmatch(m)[1] + "</code>")
	})
	s = boldText.ReplaceAllString(s, "<strong>$1</strong>")

	var blocks []string
	for _, para := range blankLines.Split(strings.TrimSpace(s), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if placeholder.FindString(para) == para && isBlock(protected, para) {
			blocks = append(blocks, para)
			continue
		}
		blocks = append(blocks, "<p>"+strings.ReplaceAll(para, "\n", "<br>")+"</p>")
	}

	out := placeholder.ReplaceAllStringFunc(strings.Join(blocks, ""), func(m string) string {
		i, err := strconv.Atoi(placeholder.FindStringSubmatch(m)[1])
		if err != nil || i >= len(protected) {
			return ""
		}
		return protected[i]
	})
	return markupPolicy.Sanitize(out)
}

func isBlock(protected []string, token string) bool {
	i, err := strconv.Atoi(strings.Trim(token, "\x00"))
	if err != nil || i >= len(protected) {
		return false
	}
	return strings.HasPrefix(protected[i], "<pre>")
}

// errorMarkup renders a failure message as an error paragraph.
func errorMarkup(message string) string {
	return markupPolicy.Sanitize(`<p class="error">` + html.EscapeString(message) + "</p>")
}
