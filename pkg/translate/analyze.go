package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gridglot/gridglot/pkg/llm"
)

// ContentAnalysis is an AI review of one piece of spreadsheet content.
type ContentAnalysis struct {
	Issues     []string `json:"issues"`
	Suggestion string   `json:"suggestion,omitempty"`
	Score      int      `json:"score"`
}

const analysisSystemPrompt = `You review individual spreadsheet strings for quality problems.

Look for typos, grammar mistakes, leftover markup, encoding artifacts and unclear phrasing.

Respond with ONLY valid JSON matching the schema. No explanations.

Rules:
1. List concrete issues; leave the array empty when the content is fine
2. Suggest an improved version only when something needs fixing
3. Score the content from 0 (unusable) to 100 (excellent)`

// AnalyzeContent asks the provider to review a single piece of content.
// It runs outside the translation lifecycle and does not touch the
// engine's state.
func (e *Engine) AnalyzeContent(ctx context.Context, content string) (*ContentAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content required")
	}

	var prompt strings.Builder
	prompt.WriteString("Review the following spreadsheet content.\n\n")
	prompt.WriteString("```\n")
	prompt.WriteString(TruncateItem(content, e.cfg.MaxItemLength))
	prompt.WriteString("\n```\n")

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: analysisSystemPrompt},
			{Role: llm.RoleUser, Content: prompt.String()},
		},
		MaxTokens:   1024,
		Temperature: e.cfg.Temperature,
		JSONSchema:  contentAnalysisSchema,
		StrictMode:  true,
	}

	resp, err := e.execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analyze content: %w", err)
	}

	var analysis ContentAnalysis
	if err := json.Unmarshal([]byte(StripMarkdownCodeBlock(resp.Content)), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w (response: %s)", err, truncateForError(resp.Content))
	}
	return &analysis, nil
}

// truncateForError truncates content for error messages.
func truncateForError(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}
