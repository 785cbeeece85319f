package translate

import (
	"encoding/json"
	"regexp"
	"strings"
)

// parseStrategy is one way of reading translations out of a model response.
// Strategies are tried in order; the first one that yields anything wins.
type parseStrategy struct {
	name string
	fn   func(string) []string
}

// parseStrategies runs from strictest to loosest. Schema-conforming
// responses land on the first entry; the tail handles models that ignore
// the response format and return bare arrays, chatty text around an
// array, or a plain list of lines.
var parseStrategies = []parseStrategy{
	{"structured", parseStructured},
	{"bare-array", parseBareArray},
	{"embedded-array", parseEmbeddedArray},
	{"line-split", parseLines},
}

// ParseBatch extracts translations from a model response, reporting which
// strategy succeeded. It returns nil only for responses no strategy could
// read; callers treat that like a count mismatch and keep the source text.
func ParseBatch(content string) ([]string, string) {
	content = StripMarkdownCodeBlock(content)

	for _, s := range parseStrategies {
		if got := s.fn(content); len(got) > 0 {
			return got, s.name
		}
	}
	return nil, "none"
}

// parseStructured reads the schema shape {"translations": [...]}.
func parseStructured(s string) []string {
	var resp batchResponse
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		return nil
	}
	return resp.Translations
}

// parseBareArray reads a top-level JSON string array.
func parseBareArray(s string) []string {
	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil
	}
	return arr
}

// parseEmbeddedArray finds the first JSON array inside surrounding prose.
func parseEmbeddedArray(s string) []string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil
	}
	return parseBareArray(s[start : end+1])
}

var reListPrefix = regexp.MustCompile(`^\s*\d+[.)]\s*`)

// parseLines treats each non-empty line as one translation, shedding list
// numbering and surrounding quotes. Content that opens like JSON already
// failed the stricter strategies and is malformed output, not a list.
func parseLines(s string) []string {
	if t := strings.TrimSpace(s); strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return nil
	}

	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(reListPrefix.ReplaceAllString(line, ""))
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// StripMarkdownCodeBlock removes markdown code block wrappers from JSON
// responses. Some models wrap their JSON output in ```json ... ``` blocks.
func StripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}

	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
