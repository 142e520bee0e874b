package llm

import (
	"regexp"
	"strings"
)

var markdownFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// cleanMarkdownWrapper strips the ```json fences models often wrap JSON in.
// Content without fences is returned trimmed.
func cleanMarkdownWrapper(content string) string {
	if m := markdownFencePattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}
