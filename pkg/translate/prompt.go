package translate

import (
	"fmt"
	"strings"
)

// SystemPrompt is the shared system prompt for all translation batches.
const SystemPrompt = `You are a professional translator for spreadsheet content.

You receive a numbered list of strings and translate each one into the requested language.

Respond with ONLY a JSON object of the form {"translations": ["...", "..."]}. No explanations.

Rules:
1. Return exactly one translation per input item, in the same order
2. Preserve numbers, codes, placeholders and punctuation as they appear
3. Keep an untranslatable item unchanged rather than omitting it
4. Translate naturally; these strings are read by end users`

// BuildBatchPrompt creates the user prompt for one batch of items.
func BuildBatchPrompt(items []string, targetLang string) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "Translate each numbered item into %s.\n", targetLang)
	fmt.Fprintf(&prompt, "Return a JSON object with a \"translations\" array of exactly %d strings.\n\n", len(items))

	for i, item := range items {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, item)
	}

	return prompt.String()
}

// TruncateItem limits one item's length inside the prompt, in runes.
// maxLen of 0 means no limit. Truncation only affects what the model
// sees; callers keep caching and reporting under the full text.
func TruncateItem(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
