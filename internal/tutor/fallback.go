package tutor

import "strings"

// FallbackPreamble introduces a canned answer.
const FallbackPreamble = "**Quick answer** (the AI tutor is unavailable right now, so here is a short built-in explanation):"

// CannedAnswer is one entry of the fallback table.
type CannedAnswer struct {
	Keyword string
	Answer  string
}

// CannedAnswers is matched in order; the first keyword found in the
// lower-cased question wins.
var CannedAnswers = []CannedAnswer{
	{
		Keyword: "variable",
		Answer: "A **variable** is a name that refers to a value, like a labelled box you can put things in. " +
			"You create one with `=`:\n\n```python\nage = 12\nname = \"Sam\"\n```\n\n" +
			"You can change what a variable holds at any time by assigning to it again.",
	},
	{
		Keyword: "loop",
		Answer: "A **loop** repeats a block of code. A `for` loop runs once for each item in a sequence, " +
			"and a `while` loop runs as long as its condition is true:\n\n```python\nfor i in range(3):\n    print(i)\n```",
	},
	{
		Keyword: "function",
		Answer: "A **function** is a named, reusable block of code. Define it with `def`, give it parameters, " +
			"and use `return` to send a result back:\n\n```python\ndef greet(name):\n    return \"Hello, \" + name\n```",
	},
	{
		Keyword: "list",
		Answer: "A **list** holds an ordered collection of values in square brackets. " +
			"Items are numbered from 0:\n\n```python\nfruits = [\"apple\", \"banana\"]\nfruits.append(\"cherry\")\nprint(fruits[0])\n```",
	},
	{
		Keyword: "dictionar",
		Answer: "A **dictionary** maps keys to values, written with curly braces. " +
			"Look a value up by its key:\n\n```python\nages = {\"Sam\": 12, \"Ana\": 14}\nprint(ages[\"Ana\"])\n```",
	},
	{
		Keyword: "string",
		Answer: "A **string** is text inside quotes. You can join strings with `+`, " +
			"measure them with `len()` and change case with methods like `.upper()`:\n\n```python\nword = \"python\"\nprint(word.upper())\n```",
	},
	{
		Keyword: "if statement",
		Answer: "An **if statement** runs code only when a condition is true. " +
			"Add `elif` and `else` for the other cases:\n\n```python\nif score >= 50:\n    print(\"pass\")\nelse:\n    print(\"try again\")\n```",
	},
	{
		Keyword: "condition",
		Answer: "A **condition** is an expression that is either `True` or `False`, such as `x > 3`. " +
			"Conditions drive `if` statements and `while` loops.",
	},
	{
		Keyword: "class",
		Answer: "A **class** is a blueprint for creating objects. It bundles data (attributes) " +
			"and behaviour (methods):\n\n```python\nclass Dog:\n    def __init__(self, name):\n        self.name = name\n```",
	},
	{
		Keyword: "error",
		Answer: "Read an **error** message from the bottom up: the last line names the error type " +
			"and the lines above show where it happened. Check the line number, then look for typos, " +
			"missing colons or wrong indentation.",
	},
	{
		Keyword: "print",
		Answer: "`print()` shows values on the screen. Separate several values with commas:\n\n```python\nprint(\"Total:\", 3 + 4)\n```",
	},
}

// Fallback answers a question the backend could not. A keyword match yields
// a canned explanation; otherwise the failure message is shown as an error.
func Fallback(message, question string) Response {
	if answer, ok := matchCanned(question); ok {
		return Format(FallbackPreamble + "\n\n" + answer.Answer)
	}
	return Response{
		Markup:  errorMarkup(message),
		Text:    message,
		IsError: true,
	}
}

func matchCanned(question string) (CannedAnswer, bool) {
	q := strings.ToLower(question)
	for _, c := range CannedAnswers {
		if strings.Contains(q, c.Keyword) {
			return c, true
		}
	}
	return CannedAnswer{}, false
}
