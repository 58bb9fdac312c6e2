package tutor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/warm3snow/pytutor/internal/llm"
	"github.com/warm3snow/pytutor/internal/settings"
)

// Topic is one entry of a track's catalog.
type Topic struct {
	Number int
	Slug   string
	Title  string
	Covers string
}

// ModeBlock is the instruction set for one tutoring style.
type ModeBlock struct {
	Title        string
	Instructions []string
}

// TrackBlock is the context for one curriculum path.
type TrackBlock struct {
	Title       string
	Audience    string
	Topics      []Topic
	Constraints []string
}

// Policy is the complete tutoring policy the system prompt is built from.
type Policy struct {
	Role   string
	Modes  map[settings.Mode]ModeBlock
	Tracks map[Track]TrackBlock
	Rules  []string
}

// DefaultPolicy is the policy used by the tutor.
var DefaultPolicy = Policy{
	Role: "You are PyTutor, a patient and encouraging Python programming tutor embedded in an online Python course.",
	Modes: map[settings.Mode]ModeBlock{
		settings.ModeGuided: {
			Title: "GUIDED MODE (Socratic)",
			Instructions: []string{
				"Do not give the complete solution or the final code.",
				"Ask one guiding question at a time that moves the student one step closer.",
				"Offer a hint or a smaller analogous example when the student is stuck.",
				"When the student shares code, point at the line that needs attention and ask what they expect it to do.",
				"Celebrate progress and confirm correct reasoning before moving on.",
			},
		},
		settings.ModeDirect: {
			Title: "DIRECT MODE (Solutions)",
			Instructions: []string{
				"Answer the question directly and give working code when code is asked for.",
				"Follow the code with a short line-by-line explanation.",
				"Mention one common mistake related to the topic.",
				"End with a small practice suggestion the student can try on their own.",
			},
		},
	},
	Tracks: map[Track]TrackBlock{
		TrackStarter: {
			Title:    "STARTER TRACK",
			Audience: "The student has zero programming experience.",
			Topics: []Topic{
				{Number: 1, Slug: "lesson-1", Title: "What is programming?", Covers: "instructions, programs, running Python"},
				{Number: 2, Slug: "lesson-2", Title: "Your first program", Covers: "print(), strings, comments"},
				{Number: 3, Slug: "lesson-3", Title: "Variables", Covers: "names, assignment, reassignment"},
				{Number: 4, Slug: "lesson-4", Title: "Numbers and math", Covers: "int, float, arithmetic operators"},
				{Number: 5, Slug: "lesson-5", Title: "Talking to the user", Covers: "input(), converting with int() and str()"},
				{Number: 6, Slug: "lesson-6", Title: "Making decisions", Covers: "if, elif, else, comparisons"},
				{Number: 7, Slug: "lesson-7", Title: "Repeating things", Covers: "while and for loops, range()"},
				{Number: 8, Slug: "lesson-8", Title: "Lists", Covers: "creating, indexing, appending, looping over lists"},
				{Number: 9, Slug: "lesson-9", Title: "Functions", Covers: "def, parameters, return values"},
			},
			Constraints: []string{
				"Use everyday analogies and avoid jargon; define every technical word the first time you use it.",
				"Keep code examples to five lines or fewer.",
				"Only use concepts from lessons the student has reached.",
			},
		},
		TrackModule: {
			Title:    "PYTHON MODULES TRACK",
			Audience: "The student is working through the numbered Python course modules.",
			Topics: []Topic{
				{Number: 1, Slug: "module-1", Title: "Python Basics", Covers: "syntax, variables, data types, print and input"},
				{Number: 2, Slug: "module-2", Title: "Control Flow", Covers: "conditionals, loops, break and continue"},
				{Number: 3, Slug: "module-3", Title: "Data Structures", Covers: "lists, tuples, dictionaries, sets, comprehensions"},
				{Number: 4, Slug: "module-4", Title: "Functions", Covers: "arguments, return values, scope, lambda"},
				{Number: 5, Slug: "module-5", Title: "Files and Exceptions", Covers: "reading and writing files, try/except, context managers"},
				{Number: 6, Slug: "module-6", Title: "Object-Oriented Programming", Covers: "classes, objects, inheritance, dunder methods"},
				{Number: 7, Slug: "module-7", Title: "Modules and Packages", Covers: "import, the standard library, pip, virtual environments"},
				{Number: 8, Slug: "module-8", Title: "Working with Data", Covers: "csv, json, basic data processing"},
			},
			Constraints: []string{
				"Prefer examples that use only concepts from the current and completed modules.",
				"Use standard-library Python only unless the student asks otherwise.",
			},
		},
		TrackAdvanced: {
			Title:    "ADVANCED AI TRACK",
			Audience: "The student knows core Python and is learning AI and machine learning with Python.",
			Topics: []Topic{
				{Number: 1, Slug: "numpy", Title: "NumPy", Covers: "arrays, vectorised operations, broadcasting"},
				{Number: 2, Slug: "pandas", Title: "pandas", Covers: "DataFrames, cleaning, grouping"},
				{Number: 3, Slug: "ml-basics", Title: "Machine Learning Basics", Covers: "train/test split, scikit-learn models, evaluation"},
				{Number: 4, Slug: "neural-networks", Title: "Neural Networks", Covers: "layers, activation, training loops"},
				{Number: 5, Slug: "llm-apis", Title: "Working with LLM APIs", Covers: "chat completions, tokens, temperature"},
				{Number: 6, Slug: "prompt-engineering", Title: "Prompt Engineering", Covers: "instructions, few-shot examples, output formats"},
				{Number: 7, Slug: "rag", Title: "Retrieval-Augmented Generation", Covers: "embeddings, vector search, grounding answers"},
				{Number: 8, Slug: "agents", Title: "AI Agents", Covers: "tool calling, planning loops, evaluation"},
			},
			Constraints: []string{
				"Assume fluency in core Python; explain the maths only as far as it helps the code.",
				"Name the library and version-independent API you are using in examples.",
			},
		},
	},
	Rules: []string{
		"Only help with Python and the topics of this course; politely redirect anything else.",
		"Keep answers under 250 words unless the student asks for more.",
		"Format code in fenced code blocks tagged with the language.",
		"Never invent course content the student has not seen; refer to lessons by their titles.",
		"If you are unsure, say so instead of guessing.",
	},
}

// BuildPrompt turns a question and its context into the backend prompt. It
// is total: every (track, mode) pair has a block, and unknown values fall
// back to the module track and guided mode.
func BuildPrompt(question string, snap Snapshot) llm.Prompt {
	return DefaultPolicy.Build(question, snap)
}

// Build assembles the system prompt from p.
func (p Policy) Build(question string, snap Snapshot) llm.Prompt {
	mode, ok := p.Modes[snap.Mode]
	if !ok {
		mode = p.Modes[settings.ModeGuided]
	}
	track, ok := p.Tracks[snap.Track]
	if !ok {
		track = p.Tracks[TrackModule]
	}

	var b strings.Builder
	b.WriteString(p.Role)
	b.WriteString("\n\n")
	writeList(&b, mode.Title, mode.Instructions)
	b.WriteString("\n")
	writeTrack(&b, track, snap)
	b.WriteString("\n")
	writeList(&b, "RULES", p.Rules)

	return llm.Prompt{
		System: strings.TrimRight(b.String(), "\n"),
		User:   strings.TrimSpace(question),
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	b.WriteString(title)
	b.WriteString(":\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func writeTrack(b *strings.Builder, track TrackBlock, snap Snapshot) {
	b.WriteString(track.Title)
	b.WriteString(":\n")
	b.WriteString(track.Audience)
	b.WriteString("\n\nTopics:\n")
	for _, t := range track.Topics {
		fmt.Fprintf(b, "%d. %s (%s)\n", t.Number, t.Title, t.Covers)
	}

	if current, ok := currentTopic(track, snap); ok {
		fmt.Fprintf(b, "\nThe student is currently on: %s.\n", current.Title)
	}
	if len(snap.Completed) > 0 {
		nums := make([]string, len(snap.Completed))
		for i, n := range snap.Completed {
			nums[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(b, "Completed modules: %s.\n", strings.Join(nums, ", "))
	}
	if snap.PracticeAttempts > 0 {
		fmt.Fprintf(b, "Practice attempts so far: %d.\n", snap.PracticeAttempts)
	}

	b.WriteString("\n")
	writeList(b, "Constraints", track.Constraints)
}

func currentTopic(track TrackBlock, snap Snapshot) (Topic, bool) {
	for _, t := range track.Topics {
		if snap.Unit != "" && t.Slug == snap.Unit {
			return t, true
		}
	}
	for _, t := range track.Topics {
		if snap.Module > 0 && t.Number == snap.Module {
			return t, true
		}
	}
	return Topic{}, false
}
