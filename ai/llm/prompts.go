package llm

import "github.com/tmc/langchaingo/prompts"

// summaryPromptTemplate frames the caller's instructions and the text to
// summarize. The closing cue keeps small local models from continuing the
// source text instead of summarizing it.
const summaryPromptTemplate = `{{.instructions}}


"{{.text}}"


CONCISE SUMMARY:`

// summaryPrompt is the go-template prompt shared by every Summarizer.
var summaryPrompt = prompts.NewPromptTemplate(summaryPromptTemplate, []string{"instructions", "text"})

// buildPrompt renders the prompt for one call.
func buildPrompt(text, instructions string) (string, error) {
	return summaryPrompt.Format(map[string]any{
		"instructions": instructions,
		"text":         text,
	})
}
