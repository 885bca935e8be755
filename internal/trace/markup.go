package trace

import (
	"encoding/json"
	"regexp"
	"strings"
)

// IDE integrations and the CLI wrap injected context in pseudo-XML markup
// that should never surface in reconstructed conversation text. Paired IDE
// tags go first, then any unterminated IDE opener trailing at end-of-text,
// then system-reminder blocks.
var (
	ideTagPattern         = regexp.MustCompile(`(?s)<ide_[a-zA-Z0-9_]*>.*?</ide_[a-zA-Z0-9_]*>`)
	ideOpenTagPattern     = regexp.MustCompile(`(?s)<ide_[a-zA-Z0-9_]*>.*$`)
	systemReminderPattern = regexp.MustCompile(`(?s)<system-reminder>.*?</system-reminder>`)
)

// StripMarkup removes IDE and system-reminder markup from text.
func StripMarkup(text string) string {
	text = ideTagPattern.ReplaceAllString(text, "")
	text = ideOpenTagPattern.ReplaceAllString(text, "")
	text = systemReminderPattern.ReplaceAllString(text, "")
	return text
}

// cleanText strips markup and surrounding whitespace from one text block.
func cleanText(text string) string {
	return strings.TrimSpace(StripMarkup(text))
}

// extractText applies the shared text-extraction rule to a message payload.
// Bare string content is cleaned and returned as-is. For block content, all
// text blocks are cleaned and joined by blank lines; a payload with no text
// block but at least one tool_result block is a tool-result echo.
func extractText(msg *MessagePayload) (text string, toolResultEcho bool) {
	if msg == nil {
		return "", false
	}

	var s string
	if err := json.Unmarshal(msg.Content, &s); err == nil {
		return cleanText(s), false
	}

	blocks := contentBlocks(msg)
	var parts []string
	hasText := false
	hasToolResult := false
	for _, b := range blocks {
		switch b.Type {
		case "text":
			hasText = true
			if t := cleanText(b.Text); t != "" {
				parts = append(parts, t)
			}
		case "tool_result":
			hasToolResult = true
		}
	}

	if hasText {
		return strings.Join(parts, "\n\n"), false
	}
	if hasToolResult {
		return "", true
	}
	return "", false
}

// firstText applies the fast-scan variant of the extraction rule: bare
// string content cleaned as-is, otherwise only the first non-empty text
// block. The echo classification matches extractText.
func firstText(msg *MessagePayload) (text string, toolResultEcho bool) {
	if msg == nil {
		return "", false
	}

	var s string
	if err := json.Unmarshal(msg.Content, &s); err == nil {
		return cleanText(s), false
	}

	blocks := contentBlocks(msg)
	hasText := false
	hasToolResult := false
	first := ""
	for _, b := range blocks {
		switch b.Type {
		case "text":
			hasText = true
			if first == "" {
				first = cleanText(b.Text)
			}
		case "tool_result":
			hasToolResult = true
		}
	}

	if hasText {
		return first, false
	}
	if hasToolResult {
		return "", true
	}
	return "", false
}
