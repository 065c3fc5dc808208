package extractor

// IsValidEntity reports whether a cleaned entity text is worth keeping:
// at least two characters and at least one alphanumeric. Failing texts are
// silently dropped before aggregation; this is filtering, not an error path.
func IsValidEntity(text string) bool {
	if runeLen(text) < minEntityLength {
		return false
	}
	for _, r := range text {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
