package agent

import (
	"fmt"
	"strings"
)

// promptTemplate instructs the model to stay inside the provided context and
// cite blocks by their [n] markers. The source list is appended separately,
// so the model is told not to produce one.
const promptTemplate = `You are an assistant answering questions over a personal note vault.
Answer using ONLY the context blocks below. Each block starts with a marker like [1].
Cite the blocks you used inline with their markers, e.g. "channels block on send [1]".
If the context does not contain enough information, say what the context does cover and what is missing.
Use plain Markdown. Do NOT append a list of sources; it is added separately.

Question: %s

Context:
%s

Answer:`

// BuildPrompt renders the generation prompt for a question and its assembled
// context.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(question), context)
}
