package llm

// Sampling parameters shared by every backend that accepts them.
const (
	Temperature = 0.7
	MaxTokens   = 500
)

// Prompt is the system instruction and user message sent to a backend.
type Prompt struct {
	System string
	User   string
}

// Messages renders the prompt as a chat message list.
func (p Prompt) Messages() []Message {
	return []Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
}

// Outcome is the result of one dispatch: exactly one of success or failure.
// The zero value is a failure with an empty message.
type Outcome struct {
	ok   bool
	text string
}

// Success wraps the reply text of a successful dispatch.
func Success(text string) Outcome {
	return Outcome{ok: true, text: text}
}

// Failure wraps the description of a failed dispatch.
func Failure(message string) Outcome {
	return Outcome{ok: false, text: message}
}

// OK reports whether the dispatch succeeded.
func (o Outcome) OK() bool {
	return o.ok
}

// Text returns the reply text of a success, or "" for a failure.
func (o Outcome) Text() string {
	if !o.ok {
		return ""
	}
	return o.text
}

// Message returns the failure description, or "" for a success.
func (o Outcome) Message() string {
	if o.ok {
		return ""
	}
	return o.text
}
