package extractor

import (
	"strings"
	"unicode/utf8"
)

// ChunkText splits a document into pieces that stay within maxChars so the
// model's context window is never exceeded. Sentences (split on ". ") are
// accumulated greedily until the next one would overflow. Non-empty input
// always yields at least one chunk; a single sentence longer than the budget
// is hard-truncated rather than dropped.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 1800
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, sentence := range strings.Split(strings.ReplaceAll(text, "\n", " \n "), ". ") {
		candidate := current + sentence + ". "
		if utf8.RuneCountInString(candidate) <= maxChars {
			current = candidate
			continue
		}
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}
		current = sentence + ". "
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	if len(chunks) == 0 {
		return []string{string([]rune(text)[:maxChars])}
	}
	return chunks
}
